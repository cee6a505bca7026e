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

//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go syscall_windows.go

//sys NtQueryInformationThread(handle windows.Handle, threadInfoClass int32, threadInfo unsafe.Pointer, threadInfoLen uint32, retLen *uint32) (ntstatus error) = ntdll.NtQueryInformationThread
//sys SwitchToThread() (switched bool) = kernel32.SwitchToThread
//sys GetProcessWindowStation() (winsta windows.Handle, err error) = user32.GetProcessWindowStation
//sys EnumDesktops(winsta windows.Handle, enumFunc uintptr, param uintptr) (err error) = user32.EnumDesktopsW
//sys OpenDesktop(name *uint16, flags uint32, inherit bool, access uint32) (desktop windows.Handle, err error) = user32.OpenDesktopW
//sys SetThreadDesktop(desktop windows.Handle) (err error) = user32.SetThreadDesktop
//sys CloseDesktop(desktop windows.Handle) (err error) = user32.CloseDesktop
//sys GetDesktopWindow() (hwnd Hwnd) = user32.GetDesktopWindow
//sys GetThreadDesktop(tid uint32) (desktop windows.Handle, err error) = user32.GetThreadDesktop
