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
	"github.com/rabbitstack/hookscan/pkg/gui"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestDecodeObject(t *testing.T) {
	obj := Object{
		Handle:        0x2d0551,
		LockCount:     2,
		Pti:           0xfffff90100634010,
		Desktop:       0xfffffa8003a5d2c0,
		Self:          0xfffff90100812a40,
		Next:          0xfffff90100813000,
		Type:          MsgFilter,
		Callback:      0x1a2b0,
		Flags:         FlagGlobal | FlagAnsi,
		Module:        -1,
		TargetPti:     0xfffff90100635c20,
		TargetDesktop: 0xfffffa8003a5d2c0,
	}
	decoded, err := DecodeObject(encodeObject(obj))
	require.NoError(t, err)
	assert.Equal(t, obj, decoded)
	assert.True(t, decoded.IsGlobal())

	_, err = DecodeObject(make([]byte, ObjectSize-1))
	require.Error(t, err)
}

func TestTypeString(t *testing.T) {
	var tests = []struct {
		typ      Type
		expected string
	}{
		{MsgFilter, "WH_MSGFILTER"},
		{JournalRecord, "WH_JOURNALRECORD"},
		{KeyboardLL, "WH_KEYBOARD_LL"},
		{MouseLL, "WH_MOUSE_LL"},
		{Type(42), "WH_42"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.typ.String())
		})
	}
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType("WH_KEYBOARD_LL")
	require.True(t, ok)
	assert.Equal(t, KeyboardLL, typ)

	typ, ok = ParseType("mouse_ll")
	require.True(t, ok)
	assert.Equal(t, MouseLL, typ)

	_, ok = ParseType("WH_UNKNOWN")
	assert.False(t, ok)
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "0", Flags(0).String())
	assert.Equal(t, "HF_GLOBAL|HF_ANSI", (FlagGlobal | FlagAnsi).String())
	assert.Equal(t, "HF_DESTROYED|0x1000", (FlagDestroyed | 0x1000).String())
}

func TestThreadRefEqual(t *testing.T) {
	explorerID := gui.Identity{Name: "explorer.exe", Pid: 4412, Tid: 4416}

	var tests = []struct {
		name     string
		a, b     ThreadRef
		expected bool
	}{
		{"both unresolved same address", ThreadRef{Addr: 0x10}, ThreadRef{Addr: 0x10}, true},
		{"both unresolved different address", ThreadRef{Addr: 0x10}, ThreadRef{Addr: 0x20}, false},
		{"resolved same identity", ThreadRef{Addr: 0x10, Resolved: true, Identity: explorerID}, ThreadRef{Addr: 0x20, Resolved: true, Identity: explorerID}, true},
		{"resolved different identity", ThreadRef{Addr: 0x10, Resolved: true, Identity: explorerID}, ThreadRef{Addr: 0x10, Resolved: true, Identity: gui.Identity{Name: "explorer.exe", Pid: 4412, Tid: 5000}}, false},
		{"resolution changed", ThreadRef{Addr: 0x10, Resolved: true, Identity: explorerID}, ThreadRef{Addr: 0x10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Equal(tt.b))
			assert.Equal(t, tt.expected, tt.b.Equal(tt.a))
		})
	}
}

func TestResolve(t *testing.T) {
	dir := gui.NewStaticDirectory(explorer)

	ref := Resolve(dir, explorer.Win32Thread)
	assert.True(t, ref.Resolved)
	assert.Equal(t, "explorer.exe(4412:4416)", ref.String())

	ref = Resolve(dir, 0xfffff90100999000)
	assert.False(t, ref.Resolved)
	assert.Equal(t, "<unknown 0xfffff90100999000>", ref.String())

	ref = Resolve(dir, 0)
	assert.False(t, ref.Resolved)
	assert.Equal(t, va.Address(0), ref.Addr)
}

func TestHookDump(t *testing.T) {
	h := &Hook{
		Object: Object{Type: KeyboardLL, Flags: FlagGlobal},
		Origin: ThreadRef{Addr: keylog.Win32Thread, Resolved: true, Identity: keylog.Identity},
	}
	h.Entry.Head = 0xfffff90100812a40

	dump := h.Dump()
	assert.Contains(t, dump, "head: 0xfffff90100812a40")
	assert.Contains(t, dump, "type: WH_KEYBOARD_LL")
	assert.Contains(t, dump, "flags: HF_GLOBAL")
	assert.Contains(t, dump, "origin: keylog.exe(7720:7724)")
}
