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

package va

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestAddressInRange(t *testing.T) {
	var tests = []struct {
		name     string
		addr     Address
		base     Address
		limit    Address
		expected bool
	}{
		{"at base", 0xfffff90000000000, 0xfffff90000000000, 0xfffff90001000000, true},
		{"inside", 0xfffff90000001000, 0xfffff90000000000, 0xfffff90001000000, true},
		{"at limit", 0xfffff90001000000, 0xfffff90000000000, 0xfffff90001000000, false},
		{"below base", 0xfffff8ffffffffff, 0xfffff90000000000, 0xfffff90001000000, false},
		{"empty range", 0x1000, 0x1000, 0x1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.addr.InRange(tt.base, tt.limit))
		})
	}
}

func TestAddressText(t *testing.T) {
	a := Address(0x7ffe0000)
	assert.Equal(t, "0x7ffe0000", a.String())

	b, err := a.MarshalText()
	require.NoError(t, err)
	var c Address
	require.NoError(t, c.UnmarshalText(b))
	assert.Equal(t, a, c)

	require.NoError(t, c.UnmarshalText([]byte("4096")))
	assert.Equal(t, Address(0x1000), c)
	require.Error(t, c.UnmarshalText([]byte("0xzz")))
}
