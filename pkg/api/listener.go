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
	"net"
	"strings"
)

const pipePrefix = `npipe:///`

// IsPipe determines whether the transport designates a named pipe.
func IsPipe(transport string) bool { return strings.HasPrefix(transport, pipePrefix) }

// makeTCPListener produces a new listener for receiving requests over TCP.
func makeTCPListener(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// transformPipePath turns a pipe URI like `npipe:///hookscan` into
// `\\.\pipe\hookscan`. Native pipe paths are returned as they are.
func transformPipePath(name string) string {
	if IsPipe(name) {
		return `\\.\pipe\` + strings.TrimPrefix(name, pipePrefix)
	}
	return name
}
