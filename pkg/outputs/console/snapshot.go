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

package console

import (
	"encoding/json"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/hookscan/pkg/hook"
	"io"
)

// DesktopHooks is the serializable view of the hooks found on a desktop.
type DesktopHooks struct {
	Desktop string      `json:"desktop"`
	Hooks   []hook.Hook `json:"hooks"`
}

// Hooks collects the hooks accepted by the match function, desktop by desktop.
// A nil match function accepts all hooks.
func Hooks(store *hook.Store, match func(*hook.Hook) bool) []DesktopHooks {
	desktops := make([]DesktopHooks, 0, len(store.Desktops()))
	for _, d := range store.Desktops() {
		dh := DesktopHooks{Desktop: d.Name(), Hooks: make([]hook.Hook, 0, d.Len())}
		hooks := d.Hooks()
		for i := range hooks {
			if match == nil || match(&hooks[i]) {
				dh.Hooks = append(dh.Hooks, hooks[i])
			}
		}
		desktops = append(desktops, dh)
	}
	return desktops
}

// WriteSnapshot renders the hooks of the store. The json format
// emits the serialized hooks, and any other format renders a table
// per desktop.
func WriteSnapshot(w io.Writer, store *hook.Store, match func(*hook.Hook) bool, frmt string) error {
	if !store.IsValid() {
		return hook.ErrInvalidSnapshot
	}
	desktops := Hooks(store, match)
	if format(frmt) == jsonf {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(desktops)
	}
	for _, d := range desktops {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle(fmt.Sprintf("%s (%d hooks, taken %s)", d.Desktop, len(d.Hooks), humanize.Time(store.InitTime())))
		t.AppendHeader(table.Row{"Hook", "Type", "Owner", "Origin", "Target", "Callback", "Module", "Flags"})
		t.SetStyle(table.StyleLight)
		for _, h := range d.Hooks {
			t.AppendRow(table.Row{h.Key(), h.Object.Type, h.Owner, h.Origin, h.Target, h.Object.Callback, h.Object.Module, h.Object.Flags})
		}
		t.Render()
	}
	return nil
}
