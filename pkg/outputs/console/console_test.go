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
	"bytes"
	"encoding/binary"
	"encoding/json"
	"github.com/rabbitstack/hookscan/pkg/desktop"
	"github.com/rabbitstack/hookscan/pkg/gui"
	"github.com/rabbitstack/hookscan/pkg/handle"
	"github.com/rabbitstack/hookscan/pkg/handle/types"
	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"runtime"
	"strings"
	"testing"
)

var (
	keylog   = gui.Identity{Name: "keylog.exe", Pid: 7720, Tid: 7724}
	explorer = gui.Identity{Name: "explorer.exe", Pid: 4412, Tid: 4416}
)

func events() []hook.Event {
	added := &hook.Hook{
		Object: hook.Object{Type: hook.KeyboardLL, Flags: hook.FlagGlobal},
		Owner:  hook.ThreadRef{Addr: 0x10, Resolved: true, Identity: keylog},
		Origin: hook.ThreadRef{Addr: 0x10, Resolved: true, Identity: keylog},
	}
	added.Entry.Head = 0xfffff90100812a40
	before := &hook.Hook{Object: hook.Object{Type: hook.Shell, Flags: hook.FlagNeedHCSkip}, Origin: hook.ThreadRef{Addr: 0x20, Resolved: true, Identity: explorer}}
	before.Entry.Head = 0xfffff90100813000
	after := *before
	after.Object.Flags = hook.FlagHung
	return []hook.Event{
		{Desktop: "Default", Kind: hook.Added, After: added},
		{Desktop: "Default", Kind: hook.Modified, Before: before, After: &after},
	}
}

func TestPublishPretty(t *testing.T) {
	var out bytes.Buffer
	c, err := newConsole(&out, Config{})
	require.NoError(t, err)
	require.NoError(t, c.Publish(events()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ADDED Default 0xfffff90100812a40 WH_KEYBOARD_LL owner: keylog.exe(7720:7724)")
	assert.Contains(t, lines[1], "MODIFIED Default 0xfffff90100813000 WH_SHELL")
	assert.Equal(t, "    flags: HF_NEEDHC_SKIP -> HF_HUNG", lines[2])
}

func TestPublishJSON(t *testing.T) {
	var out bytes.Buffer
	c, err := newConsole(&out, Config{Format: "json"})
	require.NoError(t, err)
	require.NoError(t, c.Publish(events()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var e map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &e))
	assert.Equal(t, "modified", e["kind"])
	assert.Equal(t, "Default", e["desktop"])
	assert.NotNil(t, e["before"])
	assert.NotNil(t, e["after"])
	assert.Len(t, e["changes"], 1)
}

func TestPublishTemplate(t *testing.T) {
	var out bytes.Buffer
	c, err := newConsole(&out, Config{Template: `{{ .Kind | title }}:{{ .Hook.Origin.Identity.Name | upper }}`})
	require.NoError(t, err)
	require.NoError(t, c.Publish(events()))
	assert.Equal(t, "Added:KEYLOG.EXE\nModified:EXPLORER.EXE\n", out.String())
}

func TestPublishTable(t *testing.T) {
	var out bytes.Buffer
	c, err := newConsole(&out, Config{Format: "table"})
	require.NoError(t, err)
	require.NoError(t, c.Publish(events()))
	assert.Contains(t, out.String(), "WH_KEYBOARD_LL")
	assert.Contains(t, out.String(), "flags: HF_NEEDHC_SKIP -> HF_HUNG")
}

func TestNewConsoleErrors(t *testing.T) {
	_, err := newConsole(&bytes.Buffer{}, Config{Format: "xml"})
	require.Error(t, err)
	_, err = newConsole(&bytes.Buffer{}, Config{Template: "{{ .Kind "})
	require.Error(t, err)
	_, err = initConsole(outputs.Config{Output: "console"})
	require.Error(t, err)
}

func TestWriteSnapshot(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	d := &desktop.Desktop{Name: "Default", Base: 0x10000, Limit: 0x20000}
	obj := make([]byte, hook.ObjectSize)
	binary.LittleEndian.PutUint32(obj[0x30:], uint32(hook.MouseLL))
	reader := hook.HeapReaderFunc(func(va.Address, uint) ([]byte, error) { return obj, nil })
	store := hook.NewStore(hook.WithHeapReader(reader))

	var out bytes.Buffer
	require.Error(t, WriteSnapshot(&out, store, nil, "table"))

	require.NoError(t, store.Refresh(
		desktop.NewStaticDirectory(d),
		handle.NewStaticTable(types.Entry{Head: 0x11000, Type: types.TypeHook}, types.Entry{Head: 0x12000, Type: types.TypeHook}),
		gui.NewStaticDirectory(),
	))

	require.NoError(t, WriteSnapshot(&out, store, nil, "table"))
	assert.Contains(t, out.String(), "WH_MOUSE_LL")
	assert.Contains(t, out.String(), "Default (2 hooks")

	out.Reset()
	require.NoError(t, WriteSnapshot(&out, store, func(h *hook.Hook) bool { return h.Key() == 0x12000 }, "json"))
	var desktops []DesktopHooks
	require.NoError(t, json.Unmarshal(out.Bytes(), &desktops))
	require.Len(t, desktops, 1)
	require.Len(t, desktops[0].Hooks, 1)
	assert.Equal(t, va.Address(0x12000), desktops[0].Hooks[0].Key())
}
