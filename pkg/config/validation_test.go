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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValidate(t *testing.T) {
	var tests = []struct {
		name  string
		text  string
		valid bool
		errs  int
	}{
		{
			name: "valid poll section",
			text: `poll:
                    interval: 250ms
                    max-cycles: 5
                    attach-timeout: 1m0s`,
			valid: true,
		},
		{
			name: "interval is not a duration",
			text: `poll:
                    interval: 20`,
			errs: 1,
		},
		{
			name: "unknown poll option and negative cycles",
			text: `poll:
                    intervall: 1s
                    max-cycles: -1`,
			errs: 2,
		},
		{
			name: "valid filter section",
			text: `filter:
                    processes: [explorer.exe, "*.scr"]
                    pids: [4, "1024"]
                    hook-types: [WH_KEYBOARD_LL, mouse_ll]`,
			valid: true,
		},
		{
			name: "malformed pid",
			text: `filter:
                    pids: [4, abc]`,
			errs: 1,
		},
		{
			name: "unknown console format",
			text: `output:
                    console:
                      enabled: true
                      format: xml`,
			errs: 1,
		},
		{
			name: "valid elasticsearch section",
			text: `output:
                    elasticsearch:
                      enabled: true
                      servers: ["https://es1:9200", "https://es2:9200"]
                      index-name: hookscan-%Y-%m-%d
                      flush-period: 2s
                      bulk-workers: 2`,
			valid: true,
		},
		{
			name: "no elasticsearch bulk workers",
			text: `output:
                    elasticsearch:
                      bulk-workers: 0`,
			errs: 1,
		},
		{
			name: "empty transport",
			text: `api:
                    transport: ""
                    timeout: 1s`,
			errs: 1,
		},
		{
			name: "unknown top level section",
			text: `kstream:
                    enabled: true`,
			errs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m interface{}
			require.NoError(t, yaml.Unmarshal([]byte(tt.text), &m))
			valid, errs := validate(interpolateSchema(), m)
			assert.Equal(t, tt.valid, valid, "%v", errs)
			assert.Len(t, errs, tt.errs)
		})
	}
}

func TestConvertToStringKeys(t *testing.T) {
	converted, err := convertToStringKeys(map[interface{}]interface{}{
		"poll": map[interface{}]interface{}{"interval": "1s"},
		"list": []interface{}{map[interface{}]interface{}{"a": 1}},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"poll": map[string]interface{}{"interval": "1s"},
		"list": []interface{}{map[string]interface{}{"a": 1}},
	}, converted)

	_, err = convertToStringKeys(map[interface{}]interface{}{
		"poll": map[interface{}]interface{}{1: "1s"},
	}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in poll")
}
