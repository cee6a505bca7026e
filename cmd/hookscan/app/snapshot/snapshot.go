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

package snapshot

import (
	"context"
	"os"
	"os/signal"

	"github.com/rabbitstack/hookscan/internal/bootstrap"
	"github.com/rabbitstack/hookscan/pkg/config"
	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/rabbitstack/hookscan/pkg/outputs/console"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:   "snapshot",
	Short: "Show the hooks currently installed on every desktop",
	RunE:  snapshot,
	Example: `
	# Render the hooks as tables
	hookscan snapshot

	# Dump the hooks involving a process as JSON
	hookscan snapshot --filter.processes=keylog*.exe --output.console.format=json
	`,
}

var (
	// the snapshot command config
	cfg = config.NewWithOpts(config.WithSnapshot())
)

func init() {
	cfg.MustViperize(Command)
}

func snapshot(cmd *cobra.Command, args []string) error {
	if err := bootstrap.InitConfigAndLogger(cfg); err != nil {
		return err
	}
	// the hooks are written directly to the terminal
	app, err := bootstrap.NewApp(cfg,
		bootstrap.WithDebugPrivilege(),
		bootstrap.WithSpinner(),
		bootstrap.WithClients(outputs.Discard()),
	)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := app.Snapshot(ctx)
	if err != nil {
		return err
	}

	var format string
	if c, ok := cfg.Output.Output.(console.Config); ok {
		format = c.Format
	}
	return console.WriteSnapshot(os.Stdout, store, app.Filter().Match, format)
}
