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

package api

import (
	"expvar"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os/user"
	"runtime/debug"

	"github.com/rabbitstack/hookscan/pkg/api/handler"
	"github.com/rabbitstack/hookscan/pkg/config"
	log "github.com/sirupsen/logrus"
)

var (
	listener net.Listener
	srv      *http.Server
	// snapshots keeps the hooks of the last valid store
	snapshots = handler.NewSnapshots()
)

// Snapshots returns the holder the coordinator publishes the hook snapshots to.
func Snapshots() *handler.Snapshots { return snapshots }

// StartServer starts the HTTP server with the specified configuration.
func StartServer(c *config.Config) error {
	var err error
	apiConfig := c.API
	if IsPipe(apiConfig.Transport) {
		usr, err := user.Current()
		if err != nil {
			return fmt.Errorf("failed to retrieve the current user: %v", err)
		}
		// generic access for the current user only
		descriptor := "D:P(A;;GA;;;" + usr.Uid + ")"
		listener, err = MakePipeListener(apiConfig.Transport, descriptor)
		if err != nil {
			return err
		}
	} else {
		listener, err = makeTCPListener(apiConfig.Transport)
	}
	if err != nil {
		return err
	}

	srv = &http.Server{
		Handler:      newMux(c),
		WriteTimeout: apiConfig.Timeout,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("unable to bind the API server: %v", err)
		}
	}()

	log.Infof("API server listening on %s", apiConfig.Transport)

	return nil
}

func newMux(c *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/config", handler.Config(c))
	mux.Handle("/snapshot", handler.Snapshot(snapshots))
	mux.Handle("/debug/vars", expvar.Handler())

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/freemem", func(writer http.ResponseWriter, request *http.Request) {
		debug.FreeOSMemory()
	})
	return mux
}

// CloseServer shutdowns the server by stopping the listener.
func CloseServer() error {
	if srv != nil {
		return srv.Close()
	}
	if listener != nil {
		return listener.Close()
	}
	return nil
}
