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

package types

import (
	"encoding/binary"
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"strings"
)

// Type is the USER object type tag stored in the handle entry.
type Type uint8

// USER object types as found in the bType field of the handle entry.
const (
	TypeFree Type = iota
	TypeWindow
	TypeMenu
	TypeCursor
	TypeSetWindowPos
	TypeHook
	TypeClipData
	TypeCallProc
	TypeAccelTable
	TypeDDEAccess
	TypeDDEConv
	TypeDDEXact
	TypeMonitor
	TypeKbdLayout
	TypeKbdFile
	TypeWinEventHook
	TypeTimer
	TypeInputContext
	TypeHidData
	TypeDeviceInfo
	TypeTouchInputInfo
	TypeGestureInfo
)

var typeNames = map[Type]string{
	TypeFree:           "FREE",
	TypeWindow:         "WINDOW",
	TypeMenu:           "MENU",
	TypeCursor:         "CURSOR",
	TypeSetWindowPos:   "SETWINDOWPOS",
	TypeHook:           "HOOK",
	TypeClipData:       "CLIPDATA",
	TypeCallProc:       "CALLPROC",
	TypeAccelTable:     "ACCELTABLE",
	TypeDDEAccess:      "DDEACCESS",
	TypeDDEConv:        "DDECONV",
	TypeDDEXact:        "DDEXACT",
	TypeMonitor:        "MONITOR",
	TypeKbdLayout:      "KBDLAYOUT",
	TypeKbdFile:        "KBDFILE",
	TypeWinEventHook:   "WINEVENTHOOK",
	TypeTimer:          "TIMER",
	TypeInputContext:   "INPUTCONTEXT",
	TypeHidData:        "HIDDATA",
	TypeDeviceInfo:     "DEVICEINFO",
	TypeTouchInputInfo: "TOUCHINPUTINFO",
	TypeGestureInfo:    "GESTUREINFO",
}

// String returns the type tag name.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return "TYPE_" + s
	}
	return fmt.Sprintf("TYPE_%d", uint8(t))
}

// Flags is the bFlags field of the handle entry.
type Flags uint8

// Handle entry flags.
const (
	FlagDestroy   Flags = 0x01
	FlagInDestroy Flags = 0x02
	FlagInFree    Flags = 0x04
	FlagMarkedOK  Flags = 0x10
	FlagGranted   Flags = 0x20
)

var flagNames = []struct {
	f Flags
	s string
}{
	{FlagDestroy, "HANDLEF_DESTROY"},
	{FlagInDestroy, "HANDLEF_INDESTROY"},
	{FlagInFree, "HANDLEF_INW32FREEPOOL"},
	{FlagMarkedOK, "HANDLEF_MARKED_OK"},
	{FlagGranted, "HANDLEF_GRANTED"},
}

// String renders the set flags separated by the pipe symbol.
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var sb strings.Builder
	rest := f
	for _, flag := range flagNames {
		if f&flag.f == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteRune('|')
		}
		sb.WriteString(flag.s)
		rest &^= flag.f
	}
	if rest != 0 {
		if sb.Len() > 0 {
			sb.WriteRune('|')
		}
		sb.WriteString(fmt.Sprintf("0x%02X", uint8(rest)))
	}
	return sb.String()
}

// EntrySize is the size in bytes of the handle entry on x64 systems.
const EntrySize = 0x18

// Entry is the summary of a USER object kept in the session-wide handle
// table. Entries are always copied out of the shared section because the
// live table mutates continuously.
type Entry struct {
	// Head is the kernel address of the object header. It is the
	// identity of the object.
	Head va.Address `json:"head"`
	// Owner is the kernel address of the owning THREADINFO (or
	// PROCESSINFO for process-owned objects).
	Owner va.Address `json:"owner"`
	// Type is the object type tag.
	Type Type `json:"type"`
	// Flags contains the handle entry flags.
	Flags Flags `json:"flags"`
	// Uniq is the uniqueness counter bumped on handle reuse.
	Uniq uint16 `json:"uniq"`
}

// IsHook determines if the entry references a hook object.
func (e Entry) IsHook() bool { return e.Type == TypeHook }

// String returns the entry as a human-readable string.
func (e Entry) String() string {
	return fmt.Sprintf("Head: %s, Owner: %s, Type: %s, Flags: %s, Uniq: %d", e.Head, e.Owner, e.Type, e.Flags, e.Uniq)
}

// DecodeEntry decodes the handle entry from the raw little-endian
// buffer. The buffer must hold at least EntrySize bytes.
func DecodeEntry(b []byte) (Entry, error) {
	if len(b) < EntrySize {
		return Entry{}, fmt.Errorf("handle entry buffer too small: %d bytes", len(b))
	}
	return Entry{
		Head:  va.Address(binary.LittleEndian.Uint64(b[0:])),
		Owner: va.Address(binary.LittleEndian.Uint64(b[8:])),
		Type:  Type(b[16]),
		Flags: Flags(b[17]),
		Uniq:  binary.LittleEndian.Uint16(b[18:]),
	}, nil
}
