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

package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/rabbitstack/hookscan/pkg/config"
	"github.com/rabbitstack/hookscan/pkg/util/log"
	"github.com/sirupsen/logrus"
)

// logFile is the name of the log file within the logs directory.
const logFile = "hookscan.log"

// InitConfigAndLogger loads the config file, validates the settings and
// sets up the logger. A missing config file is not an error, the flag
// defaults apply instead. A file that exists but can't be parsed is.
func InitConfigAndLogger(cfg *config.Config) error {
	err := cfg.TryLoadFile(cfg.File())
	missing := errors.Is(err, fs.ErrNotExist)
	if err != nil && !missing {
		return fmt.Errorf("unable to load %s config file: %w", cfg.File(), err)
	}
	if err := cfg.Init(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.InitFromConfig(cfg.Log, logFile); err != nil {
		return err
	}
	if missing {
		logrus.Warnf("%s config file not found. Running with the default settings", cfg.File())
	}
	return nil
}
