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

package log

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	keyLevel      = "logging.level"
	keyMaxAge     = "logging.max-age"
	keyMaxBackups = "logging.max-backups"
	keyMaxSize    = "logging.max-size"
	keyFormatter  = "logging.formatter"
	keyPath       = "logging.path"
	keyStdout     = "logging.log-stdout"
)

// Config holds the logger level and the file rotation settings.
type Config struct {
	Level      string `json:"level" yaml:"level"`
	// MaxAge is the number of days the rotated files are kept. Zero keeps them forever.
	MaxAge     int    `json:"max-age" yaml:"max-age"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int    `json:"max-backups" yaml:"max-backups"`
	// MaxSize is the size in megabytes that triggers the rotation.
	MaxSize    int    `json:"max-size" yaml:"max-size"`
	// Formatter is either json or text.
	Formatter  string `json:"formatter" yaml:"formatter"`
	// Path is the logs directory. When empty the directory is resolved
	// relative to the binary.
	Path       string `json:"path" yaml:"path"`
	// LogStdout mirrors the log lines on standard output.
	LogStdout  bool   `json:"log-stdout" yaml:"log-stdout"`
}

// InitFromViper initializes logging configuration from Viper.
func (c *Config) InitFromViper(v *viper.Viper) {
	c.Level = v.GetString(keyLevel)
	c.MaxAge = v.GetInt(keyMaxAge)
	c.MaxBackups = v.GetInt(keyMaxBackups)
	c.MaxSize = v.GetInt(keyMaxSize)
	c.Formatter = v.GetString(keyFormatter)
	c.Path = v.GetString(keyPath)
	c.LogStdout = v.GetBool(keyStdout)
}

// AddFlags registers persistent logging flags.
func (c *Config) AddFlags(flags *pflag.FlagSet) {
	flags.String(keyLevel, "info", "Specifies the minimum level of the log lines (debug|info|warn|error)")
	flags.Int(keyMaxAge, 0, "Number of days to keep the rotated log files. Zero keeps them forever")
	flags.Int(keyMaxBackups, 15, "Number of rotated log files to keep")
	flags.Int(keyMaxSize, 100, "Size in megabytes of the log file that triggers the rotation")
	flags.String(keyFormatter, "json", "Log line format (json|text)")
	flags.String(keyPath, "", "Directory for the log files. Defaults to the logs directory next to the binary")
	flags.Bool(keyStdout, false, "Mirrors the log lines on standard output")
}
