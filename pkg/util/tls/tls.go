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
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// MakeConfig builds a TLS config from the certificate, private/public key and the CA cert files.
// It returns a nil config when none of the files are given.
func MakeConfig(certFile, keyFile, caFile string, insecureSkipVerify bool) (*tls.Config, error) {
	if certFile == "" && keyFile == "" && caFile == "" {
		if insecureSkipVerify {
			return &tls.Config{InsecureSkipVerify: true}, nil //nolint:gosec
		}
		return nil, nil
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: insecureSkipVerify} //nolint:gosec

	if (certFile == "") != (keyFile == "") {
		return nil, fmt.Errorf("both certificate and key files are required")
	}
	if certFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	if caFile != "" {
		caCert, err := os.ReadFile(caFile)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("fail to load certificate authority: %s", caFile)
		}
		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}
