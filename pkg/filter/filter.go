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

// Package filter decides whether a hook is interesting enough to be reported.
package filter

import (
	"fmt"
	"github.com/bits-and-blooms/bitset"
	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/rabbitstack/hookscan/pkg/util/wildcard"
)

// hook type indices start at WH_MSGFILTER (-1), so they're shifted by one
// to become bit positions
const typeBias = 1

// Filter evaluates hooks and hook change events.
type Filter interface {
	// Match determines if the hook is wanted.
	Match(h *hook.Hook) bool
	// Events returns the events whose hooks are wanted.
	Events(events []hook.Event) []hook.Event
}

type filter struct {
	processes        []string
	pids             map[uint32]bool
	excludeProcesses []string
	excludePids      map[uint32]bool
	types            *bitset.BitSet
}

// New builds the filter from the config. Unknown hook type names
// are rejected.
func New(c Config) (Filter, error) {
	f := &filter{
		processes:        c.Processes,
		pids:             make(map[uint32]bool, len(c.Pids)),
		excludeProcesses: c.ExcludeProcesses,
		excludePids:      make(map[uint32]bool, len(c.ExcludePids)),
	}
	for _, pid := range c.Pids {
		f.pids[uint32(pid)] = true
	}
	for _, pid := range c.ExcludePids {
		f.excludePids[uint32(pid)] = true
	}
	if len(c.HookTypes) > 0 {
		f.types = bitset.New(uint(hook.MouseLL + typeBias + 1))
		for _, name := range c.HookTypes {
			typ, ok := hook.ParseType(name)
			if !ok {
				return nil, fmt.Errorf("unknown hook type %q", name)
			}
			f.types.Set(uint(typ + typeBias))
		}
	}
	return f, nil
}

func (f *filter) Match(h *hook.Hook) bool {
	if f.types != nil && !f.matchesType(h.Object.Type) {
		return false
	}
	refs := [...]hook.ThreadRef{h.Owner, h.Origin, h.Target}
	for _, ref := range refs {
		if f.excluded(ref) {
			return false
		}
	}
	if len(f.processes) == 0 && len(f.pids) == 0 {
		return true
	}
	for _, ref := range refs {
		if f.included(ref) {
			return true
		}
	}
	return false
}

func (f *filter) Events(events []hook.Event) []hook.Event {
	wanted := make([]hook.Event, 0, len(events))
	for _, e := range events {
		// either side of a modified hook may match
		if (e.Before != nil && f.Match(e.Before)) || (e.After != nil && f.Match(e.After)) {
			wanted = append(wanted, e)
		}
	}
	return wanted
}

func (f *filter) matchesType(typ hook.Type) bool {
	i := int(typ) + typeBias
	if i < 0 {
		return false
	}
	return f.types.Test(uint(i))
}

func (f *filter) included(ref hook.ThreadRef) bool {
	if !ref.Resolved {
		return false
	}
	if f.pids[ref.Identity.Pid] {
		return true
	}
	return matchAny(f.processes, ref.Identity.Name)
}

func (f *filter) excluded(ref hook.ThreadRef) bool {
	if !ref.Resolved {
		return false
	}
	if f.excludePids[ref.Identity.Pid] {
		return true
	}
	return matchAny(f.excludeProcesses, ref.Identity.Name)
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if wildcard.MatchFold(pattern, name) {
			return true
		}
	}
	return false
}
