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

package config

import (
	"fmt"
	"os"

	"github.com/rabbitstack/hookscan/internal/bootstrap"
	"github.com/rabbitstack/hookscan/pkg/config"
	kerrors "github.com/rabbitstack/hookscan/pkg/errors"
	"github.com/rabbitstack/hookscan/pkg/util/rest"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:   "config",
	Short: "Show the effective config",
	Long: `
	Renders the configuration merged from the config file, environment variables
	and flags. With --running, the config of the running instance is fetched
	through the API server instead.
	`,
	RunE: printConfig,
}

var (
	// config command options
	cfg     = config.NewWithOpts(config.WithPrint())
	running bool
)

func init() {
	cfg.MustViperize(Command)
	Command.Flags().BoolVar(&running, "running", false, "Fetches the config of the running instance")
}

func printConfig(cmd *cobra.Command, args []string) error {
	if err := bootstrap.InitConfigAndLogger(cfg); err != nil {
		return err
	}
	if running {
		body, err := rest.Get(rest.WithTransport(cfg.API.Transport), rest.WithURI("config"), rest.WithTimeout(cfg.API.Timeout))
		if err != nil {
			return kerrors.ErrHTTPServerUnavailable(cfg.API.Transport, err)
		}
		_, err = fmt.Fprintln(os.Stdout, string(body))
		return err
	}
	out, err := cfg.Print()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, out)
	return err
}
