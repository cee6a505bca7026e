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

package stats

import (
	"encoding/json"
	"io"
	"os"
	"reflect"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/hookscan/internal/bootstrap"
	"github.com/rabbitstack/hookscan/pkg/config"
	errs "github.com/rabbitstack/hookscan/pkg/errors"
	"github.com/rabbitstack/hookscan/pkg/util/rest"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:   "stats",
	Short: "Show runtime stats",
	RunE:  stats,
}

var cfg = config.NewWithOpts(config.WithStats())

func init() {
	cfg.MustViperize(Command)
}

// Stats stores runtime statistics that are retrieved from the expvar endpoint.
type Stats struct {
	DesktopAttachFailures        map[string]int `json:"desktop.attach.failures"`
	DesktopAttachedCount         int            `json:"desktop.attached.count"`
	GUIProcessOpenFailures       int            `json:"gui.process.open.failures"`
	GUISnapshotRefreshCount      int            `json:"gui.snapshot.refresh.count"`
	GUIThreadCount               int            `json:"gui.thread.count"`
	GUIThreadQueryFailures       int            `json:"gui.thread.query.failures"`
	HandleTableEntries           int            `json:"handle.table.entries"`
	HandleTableHookEntries       int            `json:"handle.table.hook.entries"`
	HandleTableReadFailures      int            `json:"handle.table.read.failures"`
	HookCount                    int            `json:"hook.count"`
	HookDiffEvents               map[string]int `json:"hook.diff.events"`
	HookInaccessibleSkips        int            `json:"hook.inaccessible.skips"`
	HookRefreshCount             int            `json:"hook.refresh.count"`
	HookUnresolvedThreads        int            `json:"hook.unresolved.threads"`
	LoggerErrors                 map[string]int `json:"logger.errors"`
	OutputAMQPChannelFailures    int            `json:"output.amqp.channel.failures"`
	OutputAMQPConnectionFailures int            `json:"output.amqp.connection.failures"`
	OutputAMQPPublishErrors      int            `json:"output.amqp.publish.errors"`
	OutputAMQPPublishMessages    int            `json:"output.amqp.publish.messages"`
	OutputConsoleErrors          int            `json:"output.console.errors"`
	OutputESBulkedDocs           int            `json:"output.elasticsearch.bulked.docs"`
	OutputESCommittedDocs        int            `json:"output.elasticsearch.committed.docs"`
	OutputESFailedDocs           int            `json:"output.elasticsearch.failed.docs"`
	OutputHTTPPublishErrors      int            `json:"output.http.publish.errors"`
	OutputHTTPPublishRequests    int            `json:"output.http.publish.requests"`
	OutputNullBlackholeEvents    int            `json:"output.null.blackhole.events"`
}

func stats(cmd *cobra.Command, args []string) error {
	if err := bootstrap.InitConfigAndLogger(cfg); err != nil {
		return err
	}
	c := cfg.API
	body, err := rest.Get(rest.WithTransport(c.Transport), rest.WithURI("debug/vars"), rest.WithTimeout(c.Timeout))
	if err != nil {
		return errs.ErrHTTPServerUnavailable(c.Transport, err)
	}
	var stats Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return err
	}
	render(os.Stdout, stats)
	return nil
}

func render(w io.Writer, stats Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "Value"})
	t.SetStyle(table.StyleLight)

	typ := reflect.TypeOf(stats)
	val := reflect.ValueOf(stats)

	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("json")
		if tag == "" {
			continue
		}
		t.AppendRow(table.Row{tag, val.Field(i).Interface()})
	}

	t.Render()
}
