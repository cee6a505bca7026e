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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestStaticTable(t *testing.T) {
	entries := []types.Entry{
		{Head: 0xfffff90100812a40, Type: types.TypeHook},
		{Head: 0xfffff90100812b00, Type: types.TypeWindow},
	}
	table := NewStaticTable(entries...)

	require.NoError(t, table.Refresh())
	assert.False(t, table.InitTime().IsZero())
	assert.Len(t, table.Entries(), 2)
	assert.True(t, table.Entries()[0].IsHook())
	assert.False(t, table.Entries()[1].IsHook())
}
