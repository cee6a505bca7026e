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

package errors

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrUnsupportedOS is returned when the probe is executed on a platform without USER hook objects
	ErrUnsupportedOS = fmt.Errorf("hookscan can only run on 64-bit Windows systems. Detected %s/%s", runtime.GOOS, runtime.GOARCH)

	// ErrHTTPServerUnavailable signals that the HTTP server is not running on the specified transport
	ErrHTTPServerUnavailable = func(transport string, err error) error {
		return fmt.Errorf("hookscan API server up and running on %s? %v", transport, err)
	}
)

// ErrInvalidConfig is returned when the configuration fails validation.
type ErrInvalidConfig struct {
	Reasons []string
}

// Error returns the error message.
func (e ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Reasons)
}

// IsInvalidConfig returns true if the error is ErrInvalidConfig.
func IsInvalidConfig(err error) bool {
	var e ErrInvalidConfig
	return errors.As(err, &e)
}
