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

package hook

import (
	"encoding/binary"
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/desktop"
	"github.com/rabbitstack/hookscan/pkg/gui"
	"github.com/rabbitstack/hookscan/pkg/handle"
	"github.com/rabbitstack/hookscan/pkg/handle/types"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"runtime"
	"testing"
)

var (
	defaultDesktop  = &desktop.Desktop{Name: "Default", Base: 0x10000, Limit: 0x20000, ClientDelta: 0x8000}
	winlogonDesktop = &desktop.Desktop{Name: "Winlogon", Base: 0x30000, Limit: 0x40000, ClientDelta: 0x28000}

	explorer = gui.Thread{Identity: gui.Identity{Name: "explorer.exe", Pid: 4412, Tid: 4416}, Win32Thread: 0xfffff90100634010}
	keylog   = gui.Thread{Identity: gui.Identity{Name: "keylog.exe", Pid: 7720, Tid: 7724}, Win32Thread: 0xfffff90100635c20}
	notepad  = gui.Thread{Identity: gui.Identity{Name: "notepad.exe", Pid: 912, Tid: 916}, Win32Thread: 0xfffff90100637e80}
)

// lockThread pins the test goroutine to its OS thread so the store
// is refreshed from the thread that created it.
func lockThread(t *testing.T) {
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)
}

func encodeObject(o Object) []byte {
	b := make([]byte, ObjectSize)
	le := binary.LittleEndian
	le.PutUint64(b[0x00:], o.Handle.Uint64())
	le.PutUint64(b[0x08:], o.LockCount)
	le.PutUint64(b[0x10:], o.Pti.Uint64())
	le.PutUint64(b[0x18:], o.Desktop.Uint64())
	le.PutUint64(b[0x20:], o.Self.Uint64())
	le.PutUint64(b[0x28:], o.Next.Uint64())
	le.PutUint32(b[0x30:], uint32(o.Type))
	le.PutUint64(b[0x38:], o.Callback.Uint64())
	le.PutUint32(b[0x40:], uint32(o.Flags))
	le.PutUint32(b[0x44:], uint32(o.Module))
	le.PutUint64(b[0x48:], o.TargetPti.Uint64())
	le.PutUint64(b[0x50:], o.TargetDesktop.Uint64())
	return b
}

// fakeHeap serves hook objects from the user mode views of the test desktops.
type fakeHeap map[va.Address][]byte

func (h fakeHeap) Read(addr va.Address, size uint) ([]byte, error) {
	b, ok := h[addr]
	if !ok {
		return nil, fmt.Errorf("unmapped address %s", addr)
	}
	return b[:size], nil
}

// testHook describes a hook installed on the test desktop.
type testHook struct {
	desk   *desktop.Desktop
	key    va.Address
	owner  va.Address
	typ    Type
	flags  Flags
	module int32
	origin va.Address
	target va.Address
}

type fixture struct {
	desktops []*desktop.Desktop
	entries  []types.Entry
	heap     fakeHeap
	threads  gui.Directory
}

func newFixture(desktops ...*desktop.Desktop) *fixture {
	return &fixture{
		desktops: desktops,
		entries:  make([]types.Entry, 0),
		heap:     make(fakeHeap),
		threads:  gui.NewStaticDirectory(explorer, keylog, notepad),
	}
}

func (f *fixture) add(hooks ...testHook) *fixture {
	for _, h := range hooks {
		f.entries = append(f.entries, types.Entry{Head: h.key, Owner: h.owner, Type: types.TypeHook, Flags: types.FlagMarkedOK})
		if h.desk != nil {
			f.heap[h.desk.Translate(h.key)] = encodeObject(Object{
				Handle:    h.key + 0x1,
				Pti:       h.origin,
				Self:      h.key,
				Type:      h.typ,
				Callback:  0x1a2b0,
				Flags:     h.flags,
				Module:    h.module,
				TargetPti: h.target,
			})
		}
	}
	return f
}

func (f *fixture) addEntry(e types.Entry) *fixture {
	f.entries = append(f.entries, e)
	return f
}

func (f *fixture) refresh(s *Store) error {
	return s.Refresh(desktop.NewStaticDirectory(f.desktops...), handle.NewStaticTable(f.entries...), f.threads)
}

// snapshot builds a valid store from the fixture and fails the test otherwise.
func (f *fixture) snapshot(t *testing.T) *Store {
	s := NewStore(WithHeapReader(f.heap))
	if err := f.refresh(s); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	return s
}

func keys(d *Desktop) []va.Address {
	keys := make([]va.Address, 0, d.Len())
	for _, h := range d.Hooks() {
		keys = append(keys, h.Key())
	}
	return keys
}
