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

package gui

import (
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"github.com/stretchr/testify/mock"
	"time"
)

// DirectoryMock is the mock thread directory used in tests.
type DirectoryMock struct {
	mock.Mock
}

// Refresh method
func (d *DirectoryMock) Refresh() error {
	args := d.Called()
	return args.Error(0)
}

// Find method
func (d *DirectoryMock) Find(addr va.Address) (Identity, bool) {
	args := d.Called(addr)
	return args.Get(0).(Identity), args.Bool(1)
}

// InitTime method
func (d *DirectoryMock) InitTime() time.Time {
	args := d.Called()
	return args.Get(0).(time.Time)
}
