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

package tls

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeConfig(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(bogus, []byte("not a certificate"), 0o600))

	var tests = []struct {
		name     string
		cert     string
		key      string
		ca       string
		insecure bool
		isNil    bool
		err      bool
	}{
		{"no files", "", "", "", false, true, false},
		{"insecure only", "", "", "", true, false, false},
		{"cert without key", "cert.pem", "", "", false, true, true},
		{"missing ca", "", "", filepath.Join(t.TempDir(), "missing.pem"), false, true, true},
		{"invalid ca", "", "", bogus, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := MakeConfig(tt.cert, tt.key, tt.ca, tt.insecure)
			if tt.err {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.isNil, c == nil)
			if c != nil {
				assert.Equal(t, tt.insecure, c.InsecureSkipVerify)
			}
		})
	}
}
