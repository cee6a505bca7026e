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

package desktop

import (
	"errors"
	"expvar"
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/sys"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
	"runtime"
	"sync"
	"time"
)

var (
	attachFailures = expvar.NewMap("desktop.attach.failures")
	attachedCount  = expvar.NewInt("desktop.attached.count")
)

// ErrNoDesktops is returned when the process could not attach to any desktop
var ErrNoDesktops = errors.New("unable to attach to any desktop")

// probe is the OS thread pinned to the desktop. As long as the
// thread stays attached, the desktop heap remains mapped into the
// address space of the process.
type probe struct {
	desktop *Desktop
	stop    chan struct{}
	done    chan struct{}
}

type attachResult struct {
	desktop *Desktop
	err     error
}

type directory struct {
	mu       sync.Mutex
	probes   []*probe
	desktops []*Desktop
	initTime time.Time
}

// NewDirectory enumerates desktops of the process window station and
// attaches a dedicated thread to each of them. Desktops the process
// lacks access to are skipped.
func NewDirectory() (Directory, error) {
	names, err := sys.EnumDesktopNames()
	if err != nil {
		return nil, err
	}
	d := &directory{
		probes:   make([]*probe, 0, len(names)),
		desktops: make([]*Desktop, 0, len(names)),
	}
	for _, name := range names {
		p, err := attach(name)
		if err != nil {
			attachFailures.Add(name, 1)
			log.Warnf("skipping inaccessible desktop %s: %v", name, err)
			continue
		}
		log.Infof("attached to desktop %s", p.desktop)
		d.probes = append(d.probes, p)
		d.desktops = append(d.desktops, p.desktop)
	}
	if len(d.desktops) == 0 {
		return nil, ErrNoDesktops
	}
	attachedCount.Set(int64(len(d.desktops)))
	d.initTime = time.Now()
	return d, nil
}

// desktop calls issued by the probe thread
var (
	threadDesktop = func() (windows.Handle, error) { return sys.GetThreadDesktop(sys.CurrentThreadID()) }
	openDesktop   = sys.OpenDesktopByName
	attachThread  = sys.AttachThreadToDesktop
	detachThread  = sys.DetachThreadFromDesktop
	closeDesktop  = sys.CloseDesktop
	readDeskInfo  = sys.ReadCurrentDesktopInfo
)

func attach(name string) (*probe, error) {
	p := &probe{stop: make(chan struct{}), done: make(chan struct{})}
	res := make(chan attachResult, 1)

	go func() {
		defer close(p.done)
		// the goroutine never unlocks the thread, so the runtime
		// terminates the thread once the goroutine returns
		runtime.LockOSThread()

		orig, err := threadDesktop()
		if err != nil {
			res <- attachResult{err: fmt.Errorf("unable to get thread desktop: %v", err)}
			return
		}
		desk, err := openDesktop(name)
		if err != nil {
			res <- attachResult{err: fmt.Errorf("unable to open desktop: %v", err)}
			return
		}
		// a desktop assigned to a thread can't be closed, so the
		// thread is detached first
		defer func() {
			if err := closeDesktop(desk); err != nil {
				log.Warnf("unable to close desktop %s: %v", name, err)
			}
		}()
		if err := attachThread(desk); err != nil {
			res <- attachResult{err: err}
			return
		}
		defer func() {
			if err := detachThread(orig); err != nil {
				log.Warnf("unable to detach from desktop %s: %v", name, err)
			}
		}()
		info, err := readDeskInfo()
		if err != nil {
			res <- attachResult{err: err}
			return
		}
		res <- attachResult{desktop: &Desktop{
			Name:        name,
			Base:        va.Address(info.Base),
			Limit:       va.Address(info.Limit),
			ClientDelta: va.Address(info.ClientDelta),
		}}

		<-p.stop
	}()

	r := <-res
	if r.err != nil {
		<-p.done
		return nil, r.err
	}
	p.desktop = r.desktop
	return p, nil
}

func (d *directory) Desktops() []*Desktop { return d.desktops }

func (d *directory) InitTime() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initTime
}

func (d *directory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initTime.IsZero() {
		return nil
	}
	for _, p := range d.probes {
		close(p.stop)
		<-p.done
	}
	d.initTime = time.Time{}
	attachedCount.Set(0)
	return nil
}
