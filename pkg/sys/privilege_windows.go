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
	"bytes"
	"encoding/binary"
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
	"unsafe"
)

// SeDebugPrivilege is the name of the privilege used to debug programs.
// It grants VM read access to the TEBs of threads in other sessions
// and protected service processes.
const SeDebugPrivilege = "SeDebugPrivilege"

// ErrorNotAllAssigned specifies that the token does not have one or
// more of the privileges specified in the state parameter.
const ErrorNotAllAssigned windows.Errno = 1300

const privilegeEnabled uint32 = 0x00000002

// EnableTokenPrivileges enables the specified privileges in the given
// token. The token must have TOKEN_ADJUST_PRIVILEGES access.
func EnableTokenPrivileges(token windows.Token, privileges ...string) error {
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, uint32(len(privileges))); err != nil {
		return err
	}
	for _, name := range privileges {
		var luid windows.LUID
		if err := windows.LookupPrivilegeValue(nil, windows.StringToUTF16Ptr(name), &luid); err != nil {
			return errors.Wrapf(err, "LookupPrivilegeValue failed on '%v'", name)
		}
		if err := binary.Write(&b, binary.LittleEndian, luid); err != nil {
			return err
		}
		if err := binary.Write(&b, binary.LittleEndian, privilegeEnabled); err != nil {
			return err
		}
	}
	privs := (*windows.Tokenprivileges)(unsafe.Pointer(&b.Bytes()[0]))
	err := windows.AdjustTokenPrivileges(token, false, privs, uint32(b.Len()), nil, nil)
	if err == ErrorNotAllAssigned {
		return errors.Wrap(err, "not all privileges were assigned")
	}
	return err
}

// SetDebugPrivilege injects the debug privilege into the access token
// of the current process.
func SetDebugPrivilege() error {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token)
	if err != nil {
		return err
	}
	defer token.Close()
	return EnableTokenPrivileges(token, SeDebugPrivilege)
}
