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
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"time"
)

// Desktop describes a desktop whose heap is mapped into the address
// space of the current process. Hook objects live in the desktop heap
// and are only readable through the user mode view of the heap.
type Desktop struct {
	// Name is the desktop name, e.g. Default or Winlogon.
	Name string `json:"name"`
	// Base is the kernel address where the desktop heap starts.
	Base va.Address `json:"base"`
	// Limit is the kernel address where the desktop heap ends.
	Limit va.Address `json:"limit"`
	// ClientDelta is the distance between the kernel address of the
	// heap and its user mode view.
	ClientDelta va.Address `json:"client_delta"`
}

// Contains determines whether the kernel address falls within
// the desktop heap.
func (d *Desktop) Contains(addr va.Address) bool {
	return addr.InRange(d.Base, d.Limit)
}

// Translate converts the kernel address of a desktop heap object to
// the address of its user mode view.
func (d *Desktop) Translate(addr va.Address) va.Address {
	return addr - d.ClientDelta
}

// String returns the desktop summary.
func (d *Desktop) String() string {
	return fmt.Sprintf("%s [%s-%s] delta: %s", d.Name, d.Base, d.Limit, d.ClientDelta)
}

// Directory provides the set of desktops whose heaps are mapped
// into the current process. The directory owns the desktops. The
// desktops stay valid until the directory is closed.
type Directory interface {
	// Desktops returns the desktops in a stable order.
	Desktops() []*Desktop
	// InitTime returns the time the directory was populated. The
	// zero time indicates the directory is not usable.
	InitTime() time.Time
	// Close detaches from all desktops and releases the resources.
	Close() error
}

type staticDirectory struct {
	desktops []*Desktop
	initTime time.Time
}

// NewStaticDirectory builds the directory from a fixed list of desktops.
func NewStaticDirectory(desktops ...*Desktop) Directory {
	return &staticDirectory{desktops: desktops, initTime: time.Now()}
}

func (d *staticDirectory) Desktops() []*Desktop { return d.desktops }
func (d *staticDirectory) InitTime() time.Time  { return d.initTime }

func (d *staticDirectory) Close() error {
	d.initTime = time.Time{}
	return nil
}
