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
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	pollInterval      = "poll.interval"
	pollMaxCycles     = "poll.max-cycles"
	pollAttachTimeout = "poll.attach-timeout"
)

// PollConfig determines how often the hook snapshots are taken.
type PollConfig struct {
	// Interval is the pause between two consecutive snapshots.
	Interval time.Duration `json:"interval" yaml:"interval"`
	// MaxCycles stops the scanner after the given number of snapshots. Zero
	// means the scanner runs until interrupted.
	MaxCycles int `json:"max-cycles" yaml:"max-cycles"`
	// AttachTimeout bounds the time spent retrying the desktop attach.
	AttachTimeout time.Duration `json:"attach-timeout" yaml:"attach-timeout"`
}

func (c *PollConfig) initFromViper(v *viper.Viper) {
	c.Interval = v.GetDuration(pollInterval)
	c.MaxCycles = v.GetInt(pollMaxCycles)
	c.AttachTimeout = v.GetDuration(pollAttachTimeout)
}

func (c *PollConfig) addFlags(flags *pflag.FlagSet) {
	flags.Duration(pollInterval, time.Second, "Specifies the interval between two hook snapshots")
	flags.Int(pollMaxCycles, 0, "Stops after taking the given number of snapshots. Zero keeps polling until interrupted")
	flags.Duration(pollAttachTimeout, time.Second*30, "Determines how long the desktop attach is retried before giving up")
}
