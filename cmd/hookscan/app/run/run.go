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

package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rabbitstack/hookscan/internal/bootstrap"
	"github.com/rabbitstack/hookscan/pkg/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:     "run",
	Short:   "Track desktop hook changes",
	Aliases: []string{"start"},
	RunE:    run,
	Example: `
	# Report hook changes on every desktop
	hookscan run

	# Only report low level keyboard and mouse hooks
	hookscan run --filter.hook-types=WH_KEYBOARD_LL,WH_MOUSE_LL

	# Report hooks of any process but the shell, in JSON format
	hookscan run --filter.exclude-processes=explorer.exe --output.console.format=json
	`,
}

var (
	// the run command config
	cfg = config.NewWithOpts(config.WithRun())
)

func init() {
	cfg.MustViperize(Command)
}

func run(cmd *cobra.Command, args []string) error {
	if err := bootstrap.InitConfigAndLogger(cfg); err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg, bootstrap.WithDebugPrivilege(), bootstrap.WithSpinner())
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Shutdown(); err != nil {
			log.Warnf("shutdown: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}
