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

package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/vars", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hook.count": 3}`))
	})
	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no snapshot taken yet", http.StatusServiceUnavailable)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")

	resp, err := Get(WithURI("debug/vars"), WithTransport(addr))
	require.NoError(t, err)
	assert.Equal(t, `{"hook.count": 3}`, string(resp))

	_, err = Get(WithURI("snapshot"), WithTransport(addr))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snapshot taken yet")
}

func TestGetWithoutTransport(t *testing.T) {
	_, err := Get(WithURI("debug/vars"))
	require.Error(t, err)
}
