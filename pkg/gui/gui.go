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

// Package gui maps kernel THREADINFO addresses of GUI threads to
// the identity of the thread and its owning process.
package gui

import (
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"time"
)

// Identity identifies the GUI thread and the process it belongs to.
type Identity struct {
	// Name is the executable name of the owning process.
	Name string `json:"name"`
	// Pid is the process identifier.
	Pid uint32 `json:"pid"`
	// Tid is the thread identifier.
	Tid uint32 `json:"tid"`
}

// String returns the identity in name(pid:tid) notation.
func (i Identity) String() string {
	return fmt.Sprintf("%s(%d:%d)", i.Name, i.Pid, i.Tid)
}

// Thread binds the identity to the kernel address of the THREADINFO
// structure the USER subsystem allocates for every GUI thread.
type Thread struct {
	Identity
	Win32Thread va.Address `json:"win32_thread"`
}

// Directory resolves THREADINFO addresses to thread identities.
type Directory interface {
	// Refresh rebuilds the directory from the live system state.
	Refresh() error
	// Find returns the identity of the GUI thread whose THREADINFO
	// lives at the given address.
	Find(addr va.Address) (Identity, bool)
	// InitTime returns the time of the last successful refresh. The
	// zero time indicates the directory was never populated.
	InitTime() time.Time
}

type staticDirectory struct {
	threads  map[va.Address]Identity
	initTime time.Time
}

// NewStaticDirectory builds the directory from a fixed set of threads.
func NewStaticDirectory(threads ...Thread) Directory {
	d := &staticDirectory{threads: make(map[va.Address]Identity, len(threads)), initTime: time.Now()}
	for _, t := range threads {
		d.threads[t.Win32Thread] = t.Identity
	}
	return d
}

func (d *staticDirectory) Refresh() error      { return nil }
func (d *staticDirectory) InitTime() time.Time { return d.initTime }

func (d *staticDirectory) Find(addr va.Address) (Identity, bool) {
	if addr.IsZero() {
		return Identity{}, false
	}
	id, ok := d.threads[addr]
	return id, ok
}
