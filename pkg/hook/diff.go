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
	"encoding/json"
	"expvar"
	"fmt"
)

var diffEvents = expvar.NewMap("hook.diff.events")

// Kind classifies the change of the hook between two snapshots.
type Kind uint8

const (
	// Added denotes the hook was installed since the earlier snapshot.
	Added Kind = iota + 1
	// Modified denotes the hook exists in both snapshots with different fields.
	Modified
	// Removed denotes the hook was uninstalled since the earlier snapshot.
	Removed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MarshalJSON encodes the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

// Event describes the change of a single hook. Before is nil for added
// hooks, and After is nil for removed ones. The records are copies
// and outlive the stores they were taken from.
type Event struct {
	Desktop string `json:"desktop"`
	Kind    Kind   `json:"kind"`
	Before  *Hook  `json:"before,omitempty"`
	After   *Hook  `json:"after,omitempty"`
}

// Hook returns the most recent record of the hook.
func (e Event) Hook() *Hook {
	if e.After != nil {
		return e.After
	}
	return e.Before
}

// Changes returns the field deltas of modified hooks.
func (e Event) Changes() []Change {
	if e.Kind != Modified {
		return nil
	}
	return Changes(e.Before, e.After)
}

// String returns the event summary.
func (e Event) String() string {
	return fmt.Sprintf("%s hook on desktop %s: %s", e.Kind, e.Desktop, e.Hook())
}

// Diff compares the earlier snapshot a with the later snapshot b.
// Desktops are paired by name and visited in the order of b. Events
// of each desktop are ordered by hook key. Desktops found only in one
// of the snapshots produce no events. Neither store is mutated.
func Diff(a, b *Store) ([]Event, error) {
	if a == nil || !a.IsValid() {
		return nil, fmt.Errorf("%w: earlier snapshot", ErrInvalidSnapshot)
	}
	if b == nil || !b.IsValid() {
		return nil, fmt.Errorf("%w: later snapshot", ErrInvalidSnapshot)
	}
	events := make([]Event, 0)
	for _, db := range b.desktops {
		da, ok := a.Desktop(db.Name())
		if !ok {
			continue
		}
		events = diffDesktop(events, db.Name(), da.hooks, db.hooks)
	}
	for _, e := range events {
		diffEvents.Add(e.Kind.String(), 1)
	}
	return events, nil
}

// diffDesktop merges two ascending, duplicate-free hook sequences.
func diffDesktop(events []Event, name string, a, b []Hook) []Event {
	var i, j int
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].Key() < b[j].Key()):
			before := a[i]
			events = append(events, Event{Desktop: name, Kind: Removed, Before: &before})
			i++
		case i >= len(a) || b[j].Key() < a[i].Key():
			after := b[j]
			events = append(events, Event{Desktop: name, Kind: Added, After: &after})
			j++
		default:
			if modified(&a[i], &b[j]) {
				before, after := a[i], b[j]
				events = append(events, Event{Desktop: name, Kind: Modified, Before: &before, After: &after})
			}
			i++
			j++
		}
	}
	return events
}
