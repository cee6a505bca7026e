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

package app

import (
	"errors"
	"runtime"

	"github.com/rabbitstack/hookscan/cmd/hookscan/app/config"
	"github.com/rabbitstack/hookscan/cmd/hookscan/app/run"
	"github.com/rabbitstack/hookscan/cmd/hookscan/app/snapshot"
	"github.com/rabbitstack/hookscan/cmd/hookscan/app/stats"
	"github.com/spf13/cobra"
)

// RootCmd is the entrance to hookscan CLI
var RootCmd = &cobra.Command{
	Use:   "hookscan",
	Short: "Desktop hook snapshot and change tracking",
	Long: `
	hookscan inspects the USER hook objects installed on the desktops of the
	current window station. It resolves the threads that own, installed and
	are targeted by every hook, and reports hooks as they are added, modified
	or removed. Global keyboard and mouse hooks are a common trait of keyloggers
	and input injectors.
	`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if runtime.GOOS != "windows" {
			return errors.New("hookscan can only be run on Windows operating systems")
		}
		if runtime.GOARCH == "386" {
			return errors.New("hookscan can't be run on 32-bits Windows operating systems")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(run.Command)
	RootCmd.AddCommand(snapshot.Command)
	RootCmd.AddCommand(stats.Command)
	RootCmd.AddCommand(config.Command)
	RootCmd.AddCommand(versionCmd)
}
