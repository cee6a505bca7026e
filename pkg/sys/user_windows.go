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

package sys

import (
	"encoding/binary"
	"fmt"
	"golang.org/x/sys/windows"
	"unsafe"
)

// ThreadBasicInformation is the information class for retrieving
// the thread's TEB address and client identifier.
const ThreadBasicInformation = 0

// ClientID mirrors the CLIENT_ID structure.
type ClientID struct {
	UniqueProcess uintptr
	UniqueThread  uintptr
}

// ThreadBasicInfo mirrors the THREAD_BASIC_INFORMATION structure.
type ThreadBasicInfo struct {
	ExitStatus     int32
	TebBaseAddress uintptr
	ClientID       ClientID
	AffinityMask   uintptr
	Priority       int32
	BasePriority   int32
}

// Offsets of the undocumented win32k structures on x64 systems. The
// layouts have been stable since Windows 7.
const (
	// tebWin32ThreadInfo is the offset of TEB.Win32ThreadInfo
	tebWin32ThreadInfo = 0x78
	// tebWin32ClientInfo is the offset of TEB.Win32ClientInfo (CLIENTINFO)
	tebWin32ClientInfo = 0x800

	clientInfoDeskInfo    = 0x20
	clientInfoClientDelta = 0x28

	deskInfoBase  = 0x0
	deskInfoLimit = 0x8

	sharedInfoServerInfo  = 0x0
	sharedInfoHandleList  = 0x8
	sharedInfoEntrySize   = 0x10
	serverInfoHandleCount = 0x8
)

// ReadMemory copies size bytes at the specified address of the
// process address space.
func ReadMemory(proc windows.Handle, addr uintptr, size uint) ([]byte, error) {
	if addr == 0 {
		return nil, fmt.Errorf("cannot read from null address")
	}
	b := make([]byte, size)
	if size == 0 {
		return b, nil
	}
	err := windows.ReadProcessMemory(proc, addr, &b[0], uintptr(size), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to read %d bytes at 0x%x: %v", size, addr, err)
	}
	return b, nil
}

// ReadLocalMemory copies memory from the address space of the
// current process without dereferencing raw pointers, so an
// unmapped region yields an error instead of an access violation.
func ReadLocalMemory(addr uintptr, size uint) ([]byte, error) {
	return ReadMemory(windows.CurrentProcess(), addr, size)
}

func readUintptr(proc windows.Handle, addr uintptr) (uintptr, error) {
	b, err := ReadMemory(proc, addr, uint(unsafe.Sizeof(uintptr(0))))
	if err != nil {
		return 0, err
	}
	return uintptr(binary.LittleEndian.Uint64(b)), nil
}

// QueryThreadTeb returns the address of the thread environment block.
func QueryThreadTeb(thread windows.Handle) (uintptr, error) {
	var info ThreadBasicInfo
	err := NtQueryInformationThread(thread, ThreadBasicInformation, unsafe.Pointer(&info), uint32(unsafe.Sizeof(info)), nil)
	if err != nil {
		return 0, err
	}
	return info.TebBaseAddress, nil
}

// ReadWin32ThreadInfo reads the kernel address of the thread's
// THREADINFO structure from the TEB. Non-GUI threads have a zero
// value.
func ReadWin32ThreadInfo(proc windows.Handle, teb uintptr) (uintptr, error) {
	return readUintptr(proc, teb+tebWin32ThreadInfo)
}

// DesktopInfo contains the desktop heap boundaries as seen by
// a thread attached to the desktop.
type DesktopInfo struct {
	// Base is the kernel address where the desktop heap starts.
	Base uintptr
	// Limit is the kernel address where the desktop heap ends.
	Limit uintptr
	// ClientDelta is subtracted from kernel heap addresses to
	// get the address of the user mode view of the heap.
	ClientDelta uintptr
}

// ReadCurrentDesktopInfo reads the desktop heap boundaries from
// the client info block of the calling thread. The thread must be
// a GUI thread.
func ReadCurrentDesktopInfo() (DesktopInfo, error) {
	teb, err := QueryThreadTeb(windows.CurrentThread())
	if err != nil {
		return DesktopInfo{}, fmt.Errorf("unable to query current thread TEB: %v", err)
	}
	ci := teb + tebWin32ClientInfo
	deskInfo, err := readUintptr(windows.CurrentProcess(), ci+clientInfoDeskInfo)
	if err != nil {
		return DesktopInfo{}, err
	}
	if deskInfo == 0 {
		return DesktopInfo{}, fmt.Errorf("thread is not attached to a desktop")
	}
	delta, err := readUintptr(windows.CurrentProcess(), ci+clientInfoClientDelta)
	if err != nil {
		return DesktopInfo{}, err
	}
	base, err := readUintptr(windows.CurrentProcess(), deskInfo+deskInfoBase)
	if err != nil {
		return DesktopInfo{}, err
	}
	limit, err := readUintptr(windows.CurrentProcess(), deskInfo+deskInfoLimit)
	if err != nil {
		return DesktopInfo{}, err
	}
	return DesktopInfo{Base: base, Limit: limit, ClientDelta: delta}, nil
}

// SharedInfo describes the user mode view of the win32k shared
// section exported by user32 as gSharedInfo.
type SharedInfo struct {
	// ServerInfo is the address of the SERVERINFO structure.
	ServerInfo uintptr
	// HandleList is the address of the first handle entry.
	HandleList uintptr
	// EntrySize is the size in bytes of each handle entry.
	EntrySize uint32
}

// HandleCount reads the current number of entries in the handle list.
func (s SharedInfo) HandleCount() (uint64, error) {
	n, err := readUintptr(windows.CurrentProcess(), s.ServerInfo+serverInfoHandleCount)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// ReadHandleList copies count handle entries.
func (s SharedInfo) ReadHandleList(count uint64) ([]byte, error) {
	return ReadLocalMemory(s.HandleList, uint(count)*uint(s.EntrySize))
}

// ResolveSharedInfo locates and decodes the gSharedInfo export.
func ResolveSharedInfo() (SharedInfo, error) {
	proc := moduser32.NewProc("gSharedInfo")
	if err := proc.Find(); err != nil {
		return SharedInfo{}, fmt.Errorf("gSharedInfo is not exported by user32: %v", err)
	}
	addr := proc.Addr()
	psi, err := readUintptr(windows.CurrentProcess(), addr+sharedInfoServerInfo)
	if err != nil {
		return SharedInfo{}, err
	}
	list, err := readUintptr(windows.CurrentProcess(), addr+sharedInfoHandleList)
	if err != nil {
		return SharedInfo{}, err
	}
	b, err := ReadLocalMemory(addr+sharedInfoEntrySize, 4)
	if err != nil {
		return SharedInfo{}, err
	}
	return SharedInfo{ServerInfo: psi, HandleList: list, EntrySize: binary.LittleEndian.Uint32(b)}, nil
}
