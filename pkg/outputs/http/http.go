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
	"bytes"
	"compress/gzip"
	"context"
	"expvar"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/rabbitstack/hookscan/pkg/util/version"
)

var (
	httpErrors   = expvar.NewInt("output.http.publish.errors")
	httpRequests = expvar.NewInt("output.http.publish.requests")
)

// contentType represents the content type of the request body
const contentType = "application/json"

type h2p struct {
	client *http.Client
	config Config
	url    string
}

func init() {
	outputs.Register(outputs.HTTP, initHTTP)
}

func initHTTP(config outputs.Config) (outputs.OutputGroup, error) {
	cfg, ok := config.Output.(Config)
	if !ok {
		return outputs.Fail(outputs.ErrInvalidConfig(outputs.HTTP, config.Output))
	}
	if len(cfg.Endpoints) == 0 {
		return outputs.Fail(fmt.Errorf("no endpoints given for %s output", outputs.HTTP))
	}
	if cfg.Method == "" {
		cfg.Method = http.MethodPost
	}

	clients := make([]outputs.Client, len(cfg.Endpoints))
	for i, endpoint := range cfg.Endpoints {
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return outputs.Fail(fmt.Errorf("invalid endpoint %q: %v", endpoint, err))
		}
		client, err := newHTTPClient(cfg)
		if err != nil {
			return outputs.Fail(err)
		}
		clients[i] = &h2p{client: client, config: cfg, url: endpoint}
	}

	return outputs.Success(clients...), nil
}

func (h *h2p) Connect() error { return nil }
func (h *h2p) Close() error   { return nil }

func (h *h2p) Publish(events []hook.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := h.post(events); err != nil {
		httpErrors.Add(1)
		return err
	}
	httpRequests.Add(1)
	return nil
}

func (h *h2p) post(events []hook.Event) error {
	buf, err := outputs.MarshalEvents(events, time.Now())
	if err != nil {
		return err
	}

	if h.config.EnableGzip {
		var bb bytes.Buffer
		gz := gzip.NewWriter(&bb)
		if _, err := gz.Write(buf); err != nil {
			return err
		}
		if err := gz.Close(); err != nil {
			return err
		}
		buf = bb.Bytes()
	}

	ctx := context.Background()
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, h.config.Method, h.url, bytes.NewReader(buf))
	if err != nil {
		return err
	}

	h.setHeaders(req)
	if h.config.Username != "" && h.config.Password != "" {
		req.SetBasicAuth(h.config.Username, h.config.Password)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return fmt.Errorf("http request failed with %d status code: %s", resp.StatusCode, string(body))
	}

	return nil
}

// setHeaders populates required and optional request headers.
func (h *h2p) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", version.ProductToken())
	req.Header.Set("Content-Type", contentType)
	if h.config.EnableGzip {
		req.Header.Set("Content-Encoding", "gzip")
	}
	for k, v := range h.config.Headers {
		req.Header.Set(k, v)
	}
}
