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
	"errors"
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/handle/types"
	"strings"
)

var (
	// ErrUninitialized is returned when a dependency of the refresh is not populated
	ErrUninitialized = errors.New("dependency is not initialized")
	// ErrWrongThread is returned when the store is refreshed outside the coordinator thread
	ErrWrongThread = errors.New("store can only be refreshed from the coordinator thread")
	// ErrCapacityExceeded signals the desktop has more hooks than USER objects can exist
	ErrCapacityExceeded = errors.New("too many hook objects")
	// ErrInvalidSnapshot is returned when diffing a store that was never successfully refreshed
	ErrInvalidSnapshot = errors.New("snapshot is not valid")
)

// IntegrityError is raised when the sorted hook records of a desktop
// contain a zero or a duplicate key. It indicates the hooks were
// attributed to the desktop inconsistently.
type IntegrityError struct {
	Desktop string
	Reason  string
	Records []Hook
}

// Error returns the error message.
func (e *IntegrityError) Error() string {
	var key string
	if len(e.Records) > 0 {
		key = " " + e.Records[0].Key().String()
	}
	return fmt.Sprintf("integrity fault on desktop %s: %s%s", e.Desktop, e.Reason, key)
}

// Dump renders the offending records.
func (e *IntegrityError) Dump() string {
	var sb strings.Builder
	for i := range e.Records {
		fmt.Fprintf(&sb, "record %d:\n%s", i, e.Records[i].Dump())
	}
	return sb.String()
}

// ReadError is raised when the hook object can't be copied from
// the mapped desktop heap.
type ReadError struct {
	Desktop string
	Entry   types.Entry
	Err     error
}

// Error returns the error message.
func (e *ReadError) Error() string {
	return fmt.Sprintf("unable to read hook object %s on desktop %s: %v", e.Entry.Head, e.Desktop, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error { return e.Err }
