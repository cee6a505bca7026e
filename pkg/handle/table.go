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
	"time"
)

// Table provides access to the copied summaries of the session-wide
// USER handle table. Entries are only valid until the next Refresh.
type Table interface {
	// Refresh copies the live handle table into the local buffer.
	Refresh() error
	// Entries returns the entries captured by the last refresh.
	Entries() []types.Entry
	// InitTime returns the time of the last successful refresh.
	// The zero time indicates the table was never populated.
	InitTime() time.Time
}

type staticTable struct {
	entries  []types.Entry
	initTime time.Time
}

// NewStaticTable builds a handle table from a fixed set of entries.
// The table is considered initialized from the moment it is created.
func NewStaticTable(entries ...types.Entry) Table {
	return &staticTable{entries: entries, initTime: time.Now()}
}

func (t *staticTable) Refresh() error         { return nil }
func (t *staticTable) Entries() []types.Entry { return t.entries }
func (t *staticTable) InitTime() time.Time    { return t.initTime }
