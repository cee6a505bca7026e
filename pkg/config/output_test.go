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
	"time"

	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/rabbitstack/hookscan/pkg/outputs/amqp"
	"github.com/rabbitstack/hookscan/pkg/outputs/elasticsearch"
	"github.com/rabbitstack/hookscan/pkg/outputs/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindActiveOutputs(t *testing.T) {
	active := findActiveOutputs(map[string]interface{}{
		"console": map[string]interface{}{"enabled": true},
		"null":    map[string]interface{}{"enabled": true},
		"other":   map[string]interface{}{"enabled": false},
		"broken":  "yes",
	})
	assert.ElementsMatch(t, []string{"console", "null"}, active)
}

func TestTryLoadOutputRejectsManyActive(t *testing.T) {
	c := NewWithOpts(WithRun())
	c.viper.Set("output.console.enabled", true)
	c.viper.Set("output.null.enabled", true)
	assert.Error(t, c.tryLoadOutput())
}

func TestDecode(t *testing.T) {
	var out struct {
		Timeout time.Duration `mapstructure:"timeout"`
		Names   []string      `mapstructure:"names"`
		Enabled bool          `mapstructure:"enabled"`
	}
	require.NoError(t, decode(map[string]interface{}{
		"timeout": "3s",
		"names":   "a, b",
		"enabled": "true",
	}, &out))
	assert.Equal(t, time.Second*3, out.Timeout)
	assert.Equal(t, []string{"a", "b"}, out.Names)
	assert.True(t, out.Enabled)
}

func TestTryLoadOutputBrokers(t *testing.T) {
	var tests = []struct {
		name     string
		settings map[string]interface{}
		typ      outputs.Type
	}{
		{
			"amqp",
			map[string]interface{}{"output.amqp.enabled": true, "output.amqp.exchange": "hooks", "output.amqp.timeout": "2s"},
			outputs.AMQP,
		},
		{
			"http",
			map[string]interface{}{"output.http.enabled": true, "output.http.endpoints": []string{"http://localhost:8080/intake"}, "output.http.enable-gzip": true},
			outputs.HTTP,
		},
		{
			"elasticsearch",
			map[string]interface{}{"output.elasticsearch.enabled": true, "output.elasticsearch.servers": []string{"http://10.0.0.4:9200"}, "output.elasticsearch.index-name": "hooks-%Y", "output.elasticsearch.flush-period": "5s"},
			outputs.Elasticsearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWithOpts(WithRun())
			c.viper.Set("output.console.enabled", false)
			for k, v := range tt.settings {
				c.viper.Set(k, v)
			}
			require.NoError(t, c.tryLoadOutput())
			assert.Equal(t, tt.typ, c.Output.Type)

			switch cfg := c.Output.Output.(type) {
			case amqp.Config:
				assert.Equal(t, "hooks", cfg.Exchange)
				assert.Equal(t, time.Second*2, cfg.Timeout)
			case http.Config:
				assert.Equal(t, []string{"http://localhost:8080/intake"}, cfg.Endpoints)
				assert.True(t, cfg.EnableGzip)
			case elasticsearch.Config:
				assert.Equal(t, []string{"http://10.0.0.4:9200"}, cfg.Servers)
				assert.Equal(t, "hooks-%Y", cfg.IndexName)
				assert.Equal(t, time.Second*5, cfg.FlushPeriod)
			default:
				t.Fatalf("unexpected output config %T", cfg)
			}
		})
	}
}
