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
	"expvar"
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/desktop"
	"github.com/rabbitstack/hookscan/pkg/gui"
	"github.com/rabbitstack/hookscan/pkg/handle"
	"github.com/rabbitstack/hookscan/pkg/handle/types"
	"github.com/rabbitstack/hookscan/pkg/sys"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"sort"
	"time"
)

// MaxHooks is the maximum number of hooks per desktop. It equals
// the maximum number of USER objects a session can hold.
const MaxHooks = 65535

var (
	refreshCount      = expvar.NewInt("hook.refresh.count")
	inaccessibleSkips = expvar.NewInt("hook.inaccessible.skips")
	unresolvedThreads = expvar.NewInt("hook.unresolved.threads")
	hookCount         = expvar.NewInt("hook.count")
)

// HeapReader copies memory from the user mode view of the desktop heap.
type HeapReader interface {
	Read(addr va.Address, size uint) ([]byte, error)
}

// HeapReaderFunc adapts the function to the HeapReader interface.
type HeapReaderFunc func(addr va.Address, size uint) ([]byte, error)

// Read calls the underlying function.
func (f HeapReaderFunc) Read(addr va.Address, size uint) ([]byte, error) { return f(addr, size) }

// Desktop binds the desktop to the hooks found on its heap during
// the last refresh. The hook buffer is reused across refreshes.
type Desktop struct {
	desktop *desktop.Desktop
	hooks   []Hook
}

// Name returns the desktop name.
func (d *Desktop) Name() string { return d.desktop.Name }

// Descriptor returns the desktop the hooks live on.
func (d *Desktop) Descriptor() *desktop.Desktop { return d.desktop }

// Hooks returns the hooks sorted by key. The slice is only valid
// until the next refresh of the store.
func (d *Desktop) Hooks() []Hook { return d.hooks }

// Len returns the number of hooks on the desktop.
func (d *Desktop) Len() int { return len(d.hooks) }

// Find looks up the hook by key.
func (d *Desktop) Find(key va.Address) (*Hook, bool) {
	i := sort.Search(len(d.hooks), func(i int) bool { return d.hooks[i].Key() >= key })
	if i < len(d.hooks) && d.hooks[i].Key() == key {
		return &d.hooks[i], true
	}
	return nil, false
}

func (d *Desktop) reset() { d.hooks = d.hooks[:0] }

func (d *Desktop) append(h Hook) error {
	if len(d.hooks) >= MaxHooks {
		return fmt.Errorf("%w: desktop %s reached %d hooks", ErrCapacityExceeded, d.Name(), MaxHooks)
	}
	d.hooks = append(d.hooks, h)
	return nil
}

// sortAndValidate orders the hooks by key and verifies keys are
// non-zero and distinct.
func (d *Desktop) sortAndValidate() error {
	sort.Slice(d.hooks, func(i, j int) bool { return d.hooks[i].Key() < d.hooks[j].Key() })
	for i := range d.hooks {
		if d.hooks[i].Key().IsZero() {
			return &IntegrityError{Desktop: d.Name(), Reason: "invalid key", Records: []Hook{d.hooks[i]}}
		}
		if i > 0 && d.hooks[i-1].Key() == d.hooks[i].Key() {
			return &IntegrityError{Desktop: d.Name(), Reason: "duplicate key", Records: []Hook{d.hooks[i-1], d.hooks[i]}}
		}
	}
	return nil
}

// Store holds the hooks of every desktop known when the store was
// first refreshed. Desktops created afterwards are not picked up by
// the store, even when the first refresh found no desktops at all.
// The store must only be used from the thread that created it.
type Store struct {
	built    bool
	desktops []*Desktop
	initTime time.Time
	tid      uint32
	reader   HeapReader
}

// Option customizes the store.
type Option func(*Store)

// WithHeapReader sets the reader for copying hook objects out of desktop heaps.
func WithHeapReader(r HeapReader) Option {
	return func(s *Store) { s.reader = r }
}

// WithCoordinatorThread overrides the thread allowed to refresh the store.
func WithCoordinatorThread(tid uint32) Option {
	return func(s *Store) { s.tid = tid }
}

// NewStore creates an empty store bound to the calling thread.
func NewStore(opts ...Option) *Store {
	s := &Store{
		desktops: make([]*Desktop, 0),
		tid:      sys.CurrentThreadID(),
		reader:   defaultHeapReader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Desktops returns the desktops in the order they were discovered.
func (s *Store) Desktops() []*Desktop { return s.desktops }

// InitTime returns the time of the last successful refresh. The zero
// time indicates the store is being refreshed or the refresh failed.
func (s *Store) InitTime() time.Time { return s.initTime }

// IsValid determines if the store contents can be trusted.
func (s *Store) IsValid() bool { return !s.initTime.IsZero() }

// Desktop returns the desktop entry by name.
func (s *Store) Desktop(name string) (*Desktop, bool) {
	for _, d := range s.desktops {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// Find looks up the hook by key across all desktops.
func (s *Store) Find(key va.Address) (*Hook, *Desktop, bool) {
	for _, d := range s.desktops {
		if h, ok := d.Find(key); ok {
			return h, d, true
		}
	}
	return nil, nil, false
}

// Len returns the total number of hooks in the store.
func (s *Store) Len() int {
	var n int
	for _, d := range s.desktops {
		n += d.Len()
	}
	return n
}

// Refresh rebuilds the store from the handle table. Each hook entry is
// attributed to the desktop whose heap contains the object header, the
// object is copied from the heap, and the owner, origin and target
// threads are resolved. Any returned error leaves the store invalid.
func (s *Store) Refresh(desktops desktop.Directory, handles handle.Table, threads gui.Directory) error {
	s.initTime = time.Time{}

	if err := s.checkPreconditions(desktops, handles, threads); err != nil {
		return err
	}

	if !s.built {
		for _, d := range desktops.Desktops() {
			s.desktops = append(s.desktops, &Desktop{desktop: d, hooks: make([]Hook, 0)})
		}
		s.built = true
	} else {
		for _, d := range s.desktops {
			d.reset()
		}
	}

	sys.Yield()

	for _, e := range handles.Entries() {
		if !e.IsHook() {
			continue
		}
		d := s.locate(e)
		if d == nil {
			inaccessibleSkips.Add(1)
			continue
		}
		h, err := s.read(d, e, threads)
		if err != nil {
			return err
		}
		if err := d.append(h); err != nil {
			return err
		}
	}

	var n int
	for _, d := range s.desktops {
		if err := d.sortAndValidate(); err != nil {
			return err
		}
		n += d.Len()
	}

	hookCount.Set(int64(n))
	refreshCount.Add(1)
	s.initTime = time.Now()

	return nil
}

func (s *Store) checkPreconditions(desktops desktop.Directory, handles handle.Table, threads gui.Directory) error {
	switch {
	case desktops == nil || desktops.InitTime().IsZero():
		return fmt.Errorf("%w: desktop directory", ErrUninitialized)
	case handles == nil || handles.InitTime().IsZero():
		return fmt.Errorf("%w: handle table", ErrUninitialized)
	case threads == nil || threads.InitTime().IsZero():
		return fmt.Errorf("%w: thread directory", ErrUninitialized)
	case s.reader == nil:
		return fmt.Errorf("%w: heap reader", ErrUninitialized)
	}
	if tid := sys.CurrentThreadID(); tid != s.tid {
		return fmt.Errorf("%w: called from thread %d, coordinator thread is %d", ErrWrongThread, tid, s.tid)
	}
	return nil
}

// locate finds the desktop whose heap contains the hook object. Nil
// is returned for hooks living on desktops we are not attached to.
func (s *Store) locate(e types.Entry) *Desktop {
	for _, d := range s.desktops {
		if d.desktop.Contains(e.Head) {
			return d
		}
	}
	return nil
}

func (s *Store) read(d *Desktop, e types.Entry, threads gui.Directory) (Hook, error) {
	b, err := s.reader.Read(d.desktop.Translate(e.Head), ObjectSize)
	if err != nil {
		return Hook{}, &ReadError{Desktop: d.Name(), Entry: e, Err: err}
	}
	obj, err := DecodeObject(b)
	if err != nil {
		return Hook{}, &ReadError{Desktop: d.Name(), Entry: e, Err: err}
	}
	h := Hook{
		Entry:  e,
		Object: obj,
		Owner:  Resolve(threads, e.Owner),
		Origin: Resolve(threads, obj.Pti),
		Target: Resolve(threads, obj.TargetPti),
	}
	for _, ref := range []ThreadRef{h.Owner, h.Origin, h.Target} {
		if !ref.Resolved && !ref.Addr.IsZero() {
			unresolvedThreads.Add(1)
		}
	}
	return h, nil
}
