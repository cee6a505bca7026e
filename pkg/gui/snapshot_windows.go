/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package gui

import (
	"expvar"
	"fmt"
	"github.com/golang/groupcache/lru"
	"github.com/rabbitstack/hookscan/pkg/sys"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
	"golang.org/x/time/rate"
	"time"
	"unsafe"
)

var (
	threadQueryFailures  = expvar.NewInt("gui.thread.query.failures")
	processOpenFailures  = expvar.NewInt("gui.process.open.failures")
	guiThreadCount       = expvar.NewInt("gui.thread.count")
	snapshotRefreshCount = expvar.NewInt("gui.snapshot.refresh.count")
)

// maxCachedProcesses bounds the number of process handles kept open during the refresh
const maxCachedProcesses = 512

type snapshot struct {
	threads  map[va.Address]Identity
	names    map[uint32]string
	procs    *lru.Cache
	lim      *rate.Limiter
	initTime time.Time
}

// NewSnapshot creates the thread directory populated from the
// toolhelp snapshot of all running threads.
func NewSnapshot() Directory {
	procs := lru.New(maxCachedProcesses)
	procs.OnEvicted = func(key lru.Key, value interface{}) {
		if h := value.(windows.Handle); h != 0 {
			_ = windows.CloseHandle(h)
		}
	}
	return &snapshot{
		threads: make(map[va.Address]Identity),
		names:   make(map[uint32]string),
		procs:   procs,
		lim:     rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (s *snapshot) Refresh() error {
	s.initTime = time.Time{}
	for addr := range s.threads {
		delete(s.threads, addr)
	}
	for pid := range s.names {
		delete(s.names, pid)
	}
	defer s.procs.Clear()

	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS|windows.TH32CS_SNAPTHREAD, 0)
	if err != nil {
		return fmt.Errorf("unable to create thread snapshot: %v", err)
	}
	defer windows.CloseHandle(snap)

	pe := windows.ProcessEntry32{Size: uint32(unsafe.Sizeof(windows.ProcessEntry32{}))}
	for err = windows.Process32First(snap, &pe); err == nil; err = windows.Process32Next(snap, &pe) {
		s.names[pe.ProcessID] = windows.UTF16ToString(pe.ExeFile[:])
	}

	te := windows.ThreadEntry32{Size: uint32(unsafe.Sizeof(windows.ThreadEntry32{}))}
	if err := windows.Thread32First(snap, &te); err != nil {
		return fmt.Errorf("unable to walk threads: %v", err)
	}
	for {
		if te.OwnerProcessID != 0 {
			s.resolve(te.OwnerProcessID, te.ThreadID)
		}
		if err := windows.Thread32Next(snap, &te); err != nil {
			break
		}
	}

	guiThreadCount.Set(int64(len(s.threads)))
	snapshotRefreshCount.Add(1)
	s.initTime = time.Now()

	return nil
}

func (s *snapshot) resolve(pid, tid uint32) {
	proc := s.openProcess(pid)
	if proc == 0 {
		return
	}
	thread, err := windows.OpenThread(windows.THREAD_QUERY_LIMITED_INFORMATION, false, tid)
	if err != nil {
		s.fail(pid, tid, err)
		return
	}
	defer windows.CloseHandle(thread)
	teb, err := sys.QueryThreadTeb(thread)
	if err != nil {
		s.fail(pid, tid, err)
		return
	}
	pti, err := sys.ReadWin32ThreadInfo(proc, teb)
	if err != nil {
		s.fail(pid, tid, err)
		return
	}
	// non-GUI threads don't have the THREADINFO
	if pti == 0 {
		return
	}
	s.threads[va.Address(pti)] = Identity{Name: s.names[pid], Pid: pid, Tid: tid}
}

func (s *snapshot) openProcess(pid uint32) windows.Handle {
	if h, ok := s.procs.Get(pid); ok {
		return h.(windows.Handle)
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION|windows.PROCESS_VM_READ, false, pid)
	if err != nil {
		processOpenFailures.Add(1)
		if s.lim.Allow() {
			log.Debugf("unable to open process %s(%d): %v", s.names[pid], pid, err)
		}
		h = 0
	}
	// failed opens are cached as well to avoid retrying on every thread
	s.procs.Add(pid, h)
	return h
}

func (s *snapshot) fail(pid, tid uint32, err error) {
	threadQueryFailures.Add(1)
	if s.lim.Allow() {
		log.Debugf("unable to query thread %d of %s(%d): %v", tid, s.names[pid], pid, err)
	}
}

func (s *snapshot) Find(addr va.Address) (Identity, bool) {
	if addr.IsZero() {
		return Identity{}, false
	}
	id, ok := s.threads[addr]
	return id, ok
}

func (s *snapshot) InitTime() time.Time { return s.initTime }
