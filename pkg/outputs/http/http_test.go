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

package http

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func events() []hook.Event {
	return []hook.Event{
		{Desktop: "Default", Kind: hook.Added, After: &hook.Hook{Object: hook.Object{Type: hook.KeyboardLL}}},
		{Desktop: "Default", Kind: hook.Removed, Before: &hook.Hook{Object: hook.Object{Type: hook.CBT}}},
		{Desktop: "Winlogon", Kind: hook.Modified, Before: &hook.Hook{}, After: &hook.Hook{Object: hook.Object{Flags: hook.FlagGlobal}}},
	}
}

func decodeEvents(t *testing.T, r io.Reader) []map[string]interface{} {
	var env struct {
		Timestamp time.Time                `json:"timestamp"`
		Events    []map[string]interface{} `json:"events"`
	}
	require.NoError(t, json.NewDecoder(r).Decode(&env))
	assert.False(t, env.Timestamp.IsZero())
	return env.Events
}

func TestHTTPPublish(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/intake", r.URL.Path)
		assert.Equal(t, "aaabbbaaa", r.Header.Get("API-Key"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "hookscan/"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Basic dXNlcjpwYXNz", r.Header.Get("Authorization"))
		evts := decodeEvents(t, r.Body)
		require.Len(t, evts, 3)
		assert.Equal(t, "added", evts[0]["kind"])
		assert.Equal(t, "Winlogon", evts[2]["desktop"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	group, err := outputs.Load(outputs.HTTP, outputs.Config{Type: outputs.HTTP, Output: Config{
		Endpoints: []string{srv.URL + "/intake"},
		Timeout:   time.Second * 3,
		Method:    http.MethodPut,
		Headers:   map[string]string{"API-Key": "aaabbbaaa"},
		Username:  "user",
		Password:  "pass",
	}})
	require.NoError(t, err)
	require.Len(t, group.Clients, 1)

	c := group.Clients[0]
	require.NoError(t, c.Connect())
	require.NoError(t, c.Publish(events()))
	require.NoError(t, c.Publish(nil))
	require.NoError(t, c.Close())
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPGzipPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		assert.Equal(t, http.MethodPost, r.Method)
		gr, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		assert.Len(t, decodeEvents(t, gr), 3)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	group, err := initHTTP(outputs.Config{Type: outputs.HTTP, Output: Config{
		Endpoints:  []string{srv.URL},
		EnableGzip: true,
	}})
	require.NoError(t, err)
	require.NoError(t, group.Clients[0].Publish(events()))
}

func TestHTTPPublishFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	group, err := initHTTP(outputs.Config{Type: outputs.HTTP, Output: Config{Endpoints: []string{srv.URL}}})
	require.NoError(t, err)
	err = group.Clients[0].Publish(events())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestInitHTTP(t *testing.T) {
	var tests = []struct {
		name    string
		config  interface{}
		clients int
		err     bool
	}{
		{"wrong config type", struct{}{}, 0, true},
		{"no endpoints", Config{}, 0, true},
		{"invalid endpoint", Config{Endpoints: []string{"not a url"}}, 0, true},
		{"invalid proxy", Config{Endpoints: []string{"http://localhost:8080"}, ProxyURL: "http://[::1"}, 0, true},
		{"missing ca", Config{Endpoints: []string{"https://localhost"}, TLSConfig: outputs.TLSConfig{TLSCA: "/nonexistent/ca.pem"}}, 0, true},
		{"endpoints", Config{Endpoints: []string{"http://localhost:8080", "http://localhost:8081"}}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, err := initHTTP(outputs.Config{Type: outputs.HTTP, Output: tt.config})
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, group.Clients, tt.clients)
		})
	}
}
