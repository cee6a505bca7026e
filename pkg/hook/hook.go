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
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/gui"
	"github.com/rabbitstack/hookscan/pkg/handle/types"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"strconv"
	"strings"
)

// ThreadRef is a weak reference to the GUI thread. The address is the
// lookup key in the thread directory. When the lookup fails the
// reference stays unresolved, which is a regular outcome for threads
// that exited or belong to processes we can't open.
type ThreadRef struct {
	// Addr is the kernel address of the THREADINFO structure.
	Addr va.Address `json:"addr"`
	// Resolved indicates whether the identity was found.
	Resolved bool `json:"resolved"`
	// Identity is the copied identity of the thread.
	Identity gui.Identity `json:"identity"`
}

// Resolve looks up the thread identity for the given address.
func Resolve(dir gui.Directory, addr va.Address) ThreadRef {
	ref := ThreadRef{Addr: addr}
	if addr.IsZero() {
		return ref
	}
	ref.Identity, ref.Resolved = dir.Find(addr)
	return ref
}

// Equal compares the thread references. Resolved references are
// compared by identity, and unresolved ones by address.
func (r ThreadRef) Equal(o ThreadRef) bool {
	if r.Resolved != o.Resolved {
		return false
	}
	if r.Resolved {
		return r.Identity == o.Identity
	}
	return r.Addr == o.Addr
}

// String returns the thread identity or the address for unresolved references.
func (r ThreadRef) String() string {
	if r.Resolved {
		return r.Identity.String()
	}
	if r.Addr.IsZero() {
		return "<none>"
	}
	return "<unknown " + r.Addr.String() + ">"
}

// Hook is the snapshot of a single hook object. All the fields are
// copies, so the record stays intact while the live state mutates.
type Hook struct {
	// Entry is the handle table entry of the hook.
	Entry types.Entry `json:"entry"`
	// Object is the HOOK structure read from the desktop heap.
	Object Object `json:"object"`
	// Owner is the thread owning the handle entry.
	Owner ThreadRef `json:"owner"`
	// Origin is the thread that installed the hook.
	Origin ThreadRef `json:"origin"`
	// Target is the hooked thread.
	Target ThreadRef `json:"target"`
}

// Key returns the identity of the hook, the kernel address of the object header.
func (h *Hook) Key() va.Address { return h.Entry.Head }

// String returns a single-line summary of the hook.
func (h *Hook) String() string {
	return fmt.Sprintf("%s %s origin: %s target: %s callback: %s flags: %s",
		h.Key(), h.Object.Type, h.Origin, h.Target, h.Object.Callback, h.Object.Flags)
}

// Dump renders all the fields of the hook record, one per line.
func (h *Hook) Dump() string {
	var sb strings.Builder
	w := func(k string, v interface{}) { fmt.Fprintf(&sb, "  %s: %v\n", k, v) }

	sb.WriteString("handle entry:\n")
	w("head", h.Entry.Head)
	w("owner", h.Entry.Owner)
	w("type", h.Entry.Type)
	w("flags", h.Entry.Flags)
	w("uniq", h.Entry.Uniq)

	sb.WriteString("hook object:\n")
	w("handle", h.Object.Handle)
	w("lock count", h.Object.LockCount)
	w("pti", h.Object.Pti)
	w("desktop", h.Object.Desktop)
	w("self", h.Object.Self)
	w("next", h.Object.Next)
	w("type", h.Object.Type)
	w("callback", h.Object.Callback)
	w("flags", h.Object.Flags)
	w("module", h.Object.Module)
	w("target pti", h.Object.TargetPti)
	w("target desktop", h.Object.TargetDesktop)

	sb.WriteString("threads:\n")
	w("owner", h.Owner)
	w("origin", h.Origin)
	w("target", h.Target)

	return sb.String()
}

// Change describes the difference in a single field of the hook.
type Change struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Changes returns the fields that differ between the two hook records.
// Only the fields taking part in the modification check are compared.
func Changes(before, after *Hook) []Change {
	changes := make([]Change, 0)
	add := func(field, b, a string) {
		if b != a {
			changes = append(changes, Change{Field: field, Before: b, After: a})
		}
	}
	add("type", before.Object.Type.String(), after.Object.Type.String())
	add("callback", before.Object.Callback.String(), after.Object.Callback.String())
	add("flags", before.Object.Flags.String(), after.Object.Flags.String())
	add("module", strconv.Itoa(int(before.Object.Module)), strconv.Itoa(int(after.Object.Module)))
	if !before.Owner.Equal(after.Owner) {
		changes = append(changes, Change{Field: "owner", Before: before.Owner.String(), After: after.Owner.String()})
	}
	if !before.Origin.Equal(after.Origin) {
		changes = append(changes, Change{Field: "origin", Before: before.Origin.String(), After: after.Origin.String()})
	}
	if !before.Target.Equal(after.Target) {
		changes = append(changes, Change{Field: "target", Before: before.Target.String(), After: after.Target.String()})
	}
	return changes
}

// modified determines whether any non-identity field differs.
func modified(a, b *Hook) bool {
	return a.Object.Type != b.Object.Type ||
		a.Object.Callback != b.Object.Callback ||
		a.Object.Flags != b.Object.Flags ||
		a.Object.Module != b.Object.Module ||
		!a.Owner.Equal(b.Owner) ||
		!a.Origin.Equal(b.Origin) ||
		!a.Target.Equal(b.Target)
}
