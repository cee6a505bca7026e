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

package handler

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rabbitstack/hookscan/pkg/outputs/console"
)

// SnapshotView is the immutable copy of a hook store exposed by the API.
type SnapshotView struct {
	Taken    time.Time              `json:"taken"`
	Cycle    uint64                 `json:"cycle"`
	Desktops []console.DesktopHooks `json:"desktops"`
}

// Snapshots holds the latest published view. The coordinator publishes
// while the HTTP handlers read from other goroutines.
type Snapshots struct {
	last atomic.Pointer[SnapshotView]
}

// NewSnapshots creates an empty snapshot holder.
func NewSnapshots() *Snapshots { return &Snapshots{} }

// Publish replaces the latest view.
func (s *Snapshots) Publish(view *SnapshotView) { s.last.Store(view) }

// Last returns the latest view or nil if nothing was published yet.
func (s *Snapshots) Last() *SnapshotView { return s.last.Load() }

// Snapshot serves the hooks of the last valid store.
func Snapshot(s *Snapshots) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		view := s.Last()
		if view == nil {
			http.Error(w, "no snapshot taken yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
