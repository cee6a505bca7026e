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
	"expvar"
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/errors"
	"github.com/rabbitstack/hookscan/pkg/handle/types"
	"github.com/rabbitstack/hookscan/pkg/sys"
	log "github.com/sirupsen/logrus"
	"time"
)

var (
	tableEntries      = expvar.NewInt("handle.table.entries")
	tableHookEntries  = expvar.NewInt("handle.table.hook.entries")
	tableReadFailures = expvar.NewInt("handle.table.read.failures")
)

// maxEntries bounds the number of handle entries copied per refresh
const maxEntries = 1 << 20

type sharedInfoTable struct {
	si       sys.SharedInfo
	entries  []types.Entry
	initTime time.Time
}

// NewSharedInfoTable creates the handle table backed by the shared
// section user32 maps into every GUI process.
func NewSharedInfoTable() (Table, error) {
	si, err := sys.ResolveSharedInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSharedInfoUnavailable, err)
	}
	if si.EntrySize < types.EntrySize {
		return nil, fmt.Errorf("unexpected handle entry size: %d", si.EntrySize)
	}
	log.Debugf("resolved shared info: server info at 0x%x, handle list at 0x%x, entry size %d",
		si.ServerInfo, si.HandleList, si.EntrySize)
	return &sharedInfoTable{si: si}, nil
}

func (t *sharedInfoTable) Refresh() error {
	t.initTime = time.Time{}
	t.entries = t.entries[:0]

	count, err := t.si.HandleCount()
	if err != nil {
		tableReadFailures.Add(1)
		return fmt.Errorf("unable to read handle count: %v", err)
	}
	if count > maxEntries {
		return fmt.Errorf("handle count %d exceeds the limit of %d entries", count, maxEntries)
	}
	b, err := t.si.ReadHandleList(count)
	if err != nil {
		tableReadFailures.Add(1)
		return fmt.Errorf("unable to copy handle list: %v", err)
	}

	var hooks int64
	size := uint64(t.si.EntrySize)
	for i := uint64(0); i < count; i++ {
		e, err := types.DecodeEntry(b[i*size : (i+1)*size])
		if err != nil {
			return err
		}
		if e.IsHook() {
			hooks++
		}
		t.entries = append(t.entries, e)
	}

	tableEntries.Set(int64(len(t.entries)))
	tableHookEntries.Set(hooks)
	t.initTime = time.Now()

	return nil
}

func (t *sharedInfoTable) Entries() []types.Entry { return t.entries }
func (t *sharedInfoTable) InitTime() time.Time    { return t.initTime }
