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
	"time"

	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/spf13/pflag"
)

const (
	endpoints  = "output.http.endpoints"
	timeout    = "output.http.timeout"
	method     = "output.http.method"
	enableGzip = "output.http.enable-gzip"
	proxyURL   = "output.http.proxy-url"
	username   = "output.http.username"
	password   = "output.http.password"
	enabled    = "output.http.enabled"
)

// Config contains the options for tweaking the HTTP output behaviour.
type Config struct {
	outputs.TLSConfig `mapstructure:",squash"`
	// Enabled determines whether HTTP output is enabled.
	Enabled bool `mapstructure:"enabled"`
	// Endpoints contains a collection of URLs to which the events are sent.
	Endpoints []string `mapstructure:"endpoints"`
	// Timeout represents the timeout for HTTP requests.
	Timeout time.Duration `mapstructure:"timeout"`
	// Method is the HTTP verb used for requests.
	Method string `mapstructure:"method"`
	// EnableGzip compresses the request body.
	EnableGzip bool `mapstructure:"enable-gzip"`
	// ProxyURL overrides the proxy from the environment.
	ProxyURL string `mapstructure:"proxy-url"`
	// Username is the user for the basic authentication.
	Username string `mapstructure:"username"`
	// Password is the password for the basic authentication.
	Password string `mapstructure:"password"`
	// Headers contains additional request headers.
	Headers map[string]string `mapstructure:"headers"`
}

// AddFlags registers persistent flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.StringSlice(endpoints, []string{}, "A list of endpoints to which the hook events are posted")
	flags.Duration(timeout, time.Second*5, "Represents the timeout for the HTTP requests")
	flags.String(method, "POST", "Determines the HTTP verb in the requests")
	flags.Bool(enableGzip, false, "Specifies if the request body is compressed with gzip")
	flags.String(proxyURL, "", "Specifies the HTTP proxy URL. It overrides the proxy from the environment")
	flags.String(username, "", "Username for the basic HTTP authentication")
	flags.String(password, "", "Password for the basic HTTP authentication")
	flags.Bool(enabled, false, "Indicates if the HTTP output is enabled")
	outputs.AddTLSFlags(flags, outputs.HTTP)
}
