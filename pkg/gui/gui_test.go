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
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestStaticDirectoryFind(t *testing.T) {
	dir := NewStaticDirectory(
		Thread{Identity: Identity{Name: "explorer.exe", Pid: 4412, Tid: 4416}, Win32Thread: 0xfffff90100634010},
		Thread{Identity: Identity{Name: "keylog.exe", Pid: 7720, Tid: 7724}, Win32Thread: 0xfffff90100635c20},
	)
	assert.False(t, dir.InitTime().IsZero())

	var tests = []struct {
		name  string
		addr  va.Address
		id    Identity
		found bool
	}{
		{"explorer", 0xfffff90100634010, Identity{Name: "explorer.exe", Pid: 4412, Tid: 4416}, true},
		{"keylogger", 0xfffff90100635c20, Identity{Name: "keylog.exe", Pid: 7720, Tid: 7724}, true},
		{"unknown thread", 0xfffff90100999000, Identity{}, false},
		{"null", 0, Identity{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := dir.Find(tt.addr)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "explorer.exe(4412:4416)", Identity{Name: "explorer.exe", Pid: 4412, Tid: 4416}.String())
}
