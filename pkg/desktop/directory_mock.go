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

package desktop

import (
	"github.com/stretchr/testify/mock"
	"time"
)

// DirectoryMock is the mock desktop directory used in tests.
type DirectoryMock struct {
	mock.Mock
}

// Desktops method
func (d *DirectoryMock) Desktops() []*Desktop {
	args := d.Called()
	return args.Get(0).([]*Desktop)
}

// InitTime method
func (d *DirectoryMock) InitTime() time.Time {
	args := d.Called()
	return args.Get(0).(time.Time)
}

// Close method
func (d *DirectoryMock) Close() error {
	args := d.Called()
	return args.Error(0)
}
