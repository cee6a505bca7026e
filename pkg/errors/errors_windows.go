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
)

var (
	// ErrSharedInfoUnavailable is returned when user32 doesn't expose the shared section of the USER subsystem
	ErrSharedInfoUnavailable = errors.New("user32 shared info is unavailable. The process must run in an interactive session")
	// ErrDebugPrivilege signals the debug privilege couldn't be acquired. Thread identities of protected processes won't be resolved
	ErrDebugPrivilege = errors.New("couldn't acquire SeDebugPrivilege. Run the probe from an elevated console to resolve all thread identities")
)
