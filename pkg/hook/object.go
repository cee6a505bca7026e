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
	"encoding/binary"
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"strings"
)

// ObjectSize is the size of the HOOK structure on x64 systems.
const ObjectSize = 0x58

// Type is the hook type index stored in the HOOK structure.
type Type int32

// Hook types as accepted by SetWindowsHookEx.
const (
	MsgFilter       Type = -1
	JournalRecord   Type = 0
	JournalPlayback Type = 1
	Keyboard        Type = 2
	GetMessage      Type = 3
	CallWndProc     Type = 4
	CBT             Type = 5
	SysMsgFilter    Type = 6
	Mouse           Type = 7
	Hardware        Type = 8
	Debug           Type = 9
	Shell           Type = 10
	ForegroundIdle  Type = 11
	CallWndProcRet  Type = 12
	KeyboardLL      Type = 13
	MouseLL         Type = 14
)

var typeNames = map[Type]string{
	MsgFilter:       "WH_MSGFILTER",
	JournalRecord:   "WH_JOURNALRECORD",
	JournalPlayback: "WH_JOURNALPLAYBACK",
	Keyboard:        "WH_KEYBOARD",
	GetMessage:      "WH_GETMESSAGE",
	CallWndProc:     "WH_CALLWNDPROC",
	CBT:             "WH_CBT",
	SysMsgFilter:    "WH_SYSMSGFILTER",
	Mouse:           "WH_MOUSE",
	Hardware:        "WH_HARDWARE",
	Debug:           "WH_DEBUG",
	Shell:           "WH_SHELL",
	ForegroundIdle:  "WH_FOREGROUNDIDLE",
	CallWndProcRet:  "WH_CALLWNDPROCRET",
	KeyboardLL:      "WH_KEYBOARD_LL",
	MouseLL:         "WH_MOUSE_LL",
}

// String returns the WH_* name of the hook type.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("WH_%d", int32(t))
}

// ParseType resolves the hook type from its name. The WH_ prefix is optional
// and the match is case-insensitive.
func ParseType(name string) (Type, bool) {
	name = strings.ToUpper(name)
	if !strings.HasPrefix(name, "WH_") {
		name = "WH_" + name
	}
	for t, s := range typeNames {
		if s == name {
			return t, true
		}
	}
	return 0, false
}

// Flags represents the HF_* hook flags.
type Flags uint32

// Hook flags.
const (
	FlagGlobal          Flags = 0x0001
	FlagAnsi            Flags = 0x0002
	FlagNeedHCSkip      Flags = 0x0004
	FlagHung            Flags = 0x0008
	FlagHookFaulted     Flags = 0x0010
	FlagNoPlaybackDelay Flags = 0x0020
	FlagWx86KnownDLL    Flags = 0x0040
	FlagDestroyed       Flags = 0x0080
	FlagInCheckWHF      Flags = 0x0100
	FlagFreed           Flags = 0x0200
)

var flagNames = []struct {
	f Flags
	s string
}{
	{FlagGlobal, "HF_GLOBAL"},
	{FlagAnsi, "HF_ANSI"},
	{FlagNeedHCSkip, "HF_NEEDHC_SKIP"},
	{FlagHung, "HF_HUNG"},
	{FlagHookFaulted, "HF_HOOKFAULTED"},
	{FlagNoPlaybackDelay, "HF_NOPLAYBACKDELAY"},
	{FlagWx86KnownDLL, "HF_WX86KNOWNDLL"},
	{FlagDestroyed, "HF_DESTROYED"},
	{FlagInCheckWHF, "HF_INCHECKWHF"},
	{FlagFreed, "HF_FREED"},
}

// String renders the set flags separated by the pipe symbol. Unknown
// bits are appended in hex notation.
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
		sb.WriteString(fmt.Sprintf("0x%X", uint32(rest)))
	}
	return sb.String()
}

// Object is the copy of the HOOK structure read from the desktop heap.
type Object struct {
	// Handle is the USER handle of the hook.
	Handle va.Address `json:"handle"`
	// LockCount is the object lock count.
	LockCount uint64 `json:"lock_count"`
	// Pti is the THREADINFO of the thread that installed the hook.
	Pti va.Address `json:"pti"`
	// Desktop is the kernel address of the desktop object the hook lives on.
	Desktop va.Address `json:"desktop"`
	// Self is the kernel address of the hook object.
	Self va.Address `json:"self"`
	// Next points to the next hook in the chain.
	Next va.Address `json:"next"`
	// Type is the hook type index.
	Type Type `json:"type"`
	// Callback is the offset of the hook procedure relative to the module base.
	Callback va.Address `json:"callback"`
	// Flags contains the HF_* flags.
	Flags Flags `json:"flags"`
	// Module is the index of the module atom containing the hook procedure.
	// The value is -1 when the procedure lives in the installing process.
	Module int32 `json:"module"`
	// TargetPti is the THREADINFO of the hooked thread. Global hooks
	// have a zero value.
	TargetPti va.Address `json:"target_pti"`
	// TargetDesktop is the desktop of the hooked thread.
	TargetDesktop va.Address `json:"target_desktop"`
}

// DecodeObject decodes the HOOK structure from the little-endian buffer.
func DecodeObject(b []byte) (Object, error) {
	if len(b) < ObjectSize {
		return Object{}, fmt.Errorf("hook object buffer too small: %d bytes", len(b))
	}
	le := binary.LittleEndian
	return Object{
		Handle:        va.Address(le.Uint64(b[0x00:])),
		LockCount:     le.Uint64(b[0x08:]),
		Pti:           va.Address(le.Uint64(b[0x10:])),
		Desktop:       va.Address(le.Uint64(b[0x18:])),
		Self:          va.Address(le.Uint64(b[0x20:])),
		Next:          va.Address(le.Uint64(b[0x28:])),
		Type:          Type(int32(le.Uint32(b[0x30:]))),
		Callback:      va.Address(le.Uint64(b[0x38:])),
		Flags:         Flags(le.Uint32(b[0x40:])),
		Module:        int32(le.Uint32(b[0x44:])),
		TargetPti:     va.Address(le.Uint64(b[0x48:])),
		TargetDesktop: va.Address(le.Uint64(b[0x50:])),
	}, nil
}

// IsGlobal determines if the hook targets all threads on the desktop.
func (o Object) IsGlobal() bool { return o.Flags&FlagGlobal != 0 }
