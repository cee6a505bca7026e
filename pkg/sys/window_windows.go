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
	"fmt"
	"golang.org/x/sys/windows"
)

// Hwnd defines the window handle type
type Hwnd uintptr

// IsValid indicates if the window handle is valid.
func (w Hwnd) IsValid() bool { return w != 0 }

// Desktop access rights requested when attaching the probe
// thread to a desktop. Reading objects is enough to have the
// desktop heap mapped into the address space of the process.
const (
	DesktopReadObjects  = 0x0001
	DesktopEnumerate    = 0x0040
	DesktopProbeAccess  = DesktopReadObjects | DesktopEnumerate
	desktopNameMaxChars = 1024
)

// EnumDesktopNames returns the names of all desktops that live
// in the window station assigned to the calling process.
func EnumDesktopNames() ([]string, error) {
	winsta, err := GetProcessWindowStation()
	if err != nil {
		return nil, fmt.Errorf("unable to get process window station: %v", err)
	}
	names := make([]string, 0)
	cb := windows.NewCallback(func(name *uint16, param uintptr) uintptr {
		names = append(names, windows.UTF16PtrToString(name))
		return 1
	})
	if err := EnumDesktops(winsta, cb, 0); err != nil {
		return nil, fmt.Errorf("unable to enumerate desktops: %v", err)
	}
	return names, nil
}

// OpenDesktopByName opens the desktop with the access required to
// attach a thread to it.
func OpenDesktopByName(name string) (windows.Handle, error) {
	if len(name) > desktopNameMaxChars {
		return 0, fmt.Errorf("desktop name too long: %d chars", len(name))
	}
	n, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	return OpenDesktop(n, 0, false, DesktopProbeAccess)
}

// AttachThreadToDesktop assigns the desktop to the calling OS thread
// and converts it into a GUI thread. The thread must not own any
// windows or hooks. Callers are expected to lock the goroutine to
// the OS thread before calling this function.
func AttachThreadToDesktop(desktop windows.Handle) error {
	if err := SetThreadDesktop(desktop); err != nil {
		return fmt.Errorf("unable to set thread desktop: %v", err)
	}
	// any user32 call promotes the thread to GUI
	// thread and initializes the client info block
	if !GetDesktopWindow().IsValid() {
		return fmt.Errorf("no desktop window after attaching the thread")
	}
	return nil
}


// DetachThreadFromDesktop assigns the original desktop back to the
// calling thread, so the probe desktop handle can be closed.
func DetachThreadFromDesktop(orig windows.Handle) error {
	if err := SetThreadDesktop(orig); err != nil {
		return fmt.Errorf("unable to restore thread desktop: %v", err)
	}
	return nil
}
