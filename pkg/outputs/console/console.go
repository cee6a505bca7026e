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

package console

import (
	"bufio"
	"encoding/json"
	"expvar"
	"fmt"
	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/valyala/bytebufferpool"
	"io"
	"os"
	"text/template"
	"time"
)

var (
	consoleErrors = expvar.NewInt("output.console.errors")
)

type format string

const (
	pretty    format = "pretty"
	jsonf     format = "json"
	tablef    format = "table"
	templatef format = "template"
	// defaultTemplate is the template used in pretty rendering mode
	defaultTemplate = `{{ .Timestamp.Format "2006-01-02 15:04:05" }} {{ .Kind | upper }} {{ .Desktop }} {{ .Hook.Key }} {{ .Hook.Object.Type }} owner: {{ .Hook.Owner }} origin: {{ .Hook.Origin }} target: {{ .Hook.Target }}`
)

// Data is the value every template is executed against.
type Data struct {
	hook.Event
	Timestamp time.Time
	Hook      *hook.Hook
	Kind      string
	Changes   []hook.Change
}

func newData(e hook.Event, ts time.Time) Data {
	return Data{Event: e, Timestamp: ts, Hook: e.Hook(), Kind: e.Kind.String(), Changes: e.Changes()}
}

type console struct {
	writer *bufio.Writer
	tmpl   *template.Template
	format format
	pool   bytebufferpool.Pool
}

func init() {
	outputs.Register(outputs.Console, initConsole)
}

func initConsole(config outputs.Config) (outputs.OutputGroup, error) {
	cfg, ok := config.Output.(Config)
	if !ok {
		return outputs.Fail(outputs.ErrInvalidConfig(outputs.Console, config.Output))
	}
	c, err := newConsole(os.Stdout, cfg)
	if err != nil {
		return outputs.Fail(err)
	}
	return outputs.Success(c), nil
}

func newConsole(w io.Writer, cfg Config) (*console, error) {
	f := format(cfg.Format)
	text := defaultTemplate
	if cfg.Template != "" {
		text = cfg.Template
		if f == "" || f == pretty {
			f = templatef
		}
	}
	switch f {
	case "":
		f = pretty
	case pretty, jsonf, tablef, templatef:
	default:
		return nil, fmt.Errorf("unknown console format %q", cfg.Format)
	}
	tmpl, err := template.New("hook").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid console template: %v", err)
	}
	return &console{
		writer: bufio.NewWriterSize(w, 8*1024),
		tmpl:   tmpl,
		format: f,
	}, nil
}

func (c *console) Close() error   { return c.writer.Flush() }
func (c *console) Connect() error { return nil }

func (c *console) Publish(events []hook.Event) error {
	if len(events) == 0 {
		return nil
	}
	now := time.Now()
	if c.format == tablef {
		c.renderTable(events)
		return c.flush()
	}

	for _, e := range events {
		buf := c.pool.Get()
		err := c.render(buf, newData(e, now))
		if err == nil {
			err = c.write(buf.B)
		}
		c.pool.Put(buf)
		if err != nil {
			consoleErrors.Add(1)
			continue
		}
	}

	return c.flush()
}

func (c *console) flush() error {
	if err := c.writer.Flush(); err != nil {
		consoleErrors.Add(1)
		return err
	}
	return nil
}

func (c *console) render(buf *bytebufferpool.ByteBuffer, data Data) error {
	switch c.format {
	case jsonf:
		b, err := json.Marshal(struct {
			Timestamp time.Time `json:"timestamp"`
			hook.Event
			Changes []hook.Change `json:"changes,omitempty"`
		}{data.Timestamp, data.Event, data.Changes})
		if err != nil {
			return err
		}
		_, _ = buf.Write(b)
	case templatef:
		if err := c.tmpl.Execute(buf, data); err != nil {
			return err
		}
	default:
		if err := c.tmpl.Execute(buf, data); err != nil {
			return err
		}
		for _, ch := range data.Changes {
			_, _ = fmt.Fprintf(buf, "\n    %s: %s -> %s", ch.Field, ch.Before, ch.After)
		}
	}
	_, _ = buf.Write(nl)
	return nil
}

func (c *console) renderTable(events []hook.Event) {
	t := table.NewWriter()
	t.SetOutputMirror(c.writer)
	t.AppendHeader(table.Row{"Kind", "Desktop", "Hook", "Type", "Owner", "Origin", "Target", "Flags", "Changes"})
	t.SetStyle(table.StyleLight)
	for _, e := range events {
		h := e.Hook()
		var changes string
		for i, ch := range e.Changes() {
			if i > 0 {
				changes += "\n"
			}
			changes += fmt.Sprintf("%s: %s -> %s", ch.Field, ch.Before, ch.After)
		}
		t.AppendRow(table.Row{e.Kind, e.Desktop, h.Key(), h.Object.Type, h.Owner, h.Origin, h.Target, h.Object.Flags, changes})
	}
	t.Render()
}

var nl = []byte("\n")

func (c *console) write(buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := c.writer.Write(buf[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}
