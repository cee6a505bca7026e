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

package handle

import (
	"github.com/rabbitstack/hookscan/pkg/handle/types"
	"github.com/stretchr/testify/mock"
	"time"
)

// TableMock is the mock handle table used in tests.
type TableMock struct {
	mock.Mock
}

// Refresh method
func (t *TableMock) Refresh() error {
	args := t.Called()
	return args.Error(0)
}

// Entries method
func (t *TableMock) Entries() []types.Entry {
	args := t.Called()
	return args.Get(0).([]types.Entry)
}

// InitTime method
func (t *TableMock) InitTime() time.Time {
	args := t.Called()
	return args.Get(0).(time.Time)
}
