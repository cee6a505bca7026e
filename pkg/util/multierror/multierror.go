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

package multierror

import "strings"

// Error aggregates several errors into one.
type Error struct {
	errs []error
}

// Wrap combines the given errors. Nil errors are discarded. It returns nil
// if no error remains, and the error itself if only one remains.
func Wrap(errs ...error) error {
	nonNil := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return &Error{errs: nonNil}
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("\n")
	for _, err := range e.errs {
		b.WriteString("\t")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// Errors returns the aggregated errors.
func (e *Error) Errors() []error { return e.errs }

// Unwrap makes the aggregated errors visible to errors.Is and errors.As.
func (e *Error) Unwrap() []error { return e.errs }
