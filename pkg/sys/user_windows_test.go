//go:build amd64

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
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestStructLayouts(t *testing.T) {
	var tests = []struct {
		name string
		size uintptr
		want uintptr
	}{
		{"client id", unsafe.Sizeof(ClientID{}), 0x10},
		{"thread basic info", unsafe.Sizeof(ThreadBasicInfo{}), 0x30},
		{"client id offset", unsafe.Offsetof(ThreadBasicInfo{}.ClientID), 0x10},
		{"affinity mask offset", unsafe.Offsetof(ThreadBasicInfo{}.AffinityMask), 0x20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.size)
		})
	}
}
