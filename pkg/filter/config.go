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

package filter

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"strconv"
	"strings"
)

const (
	processes        = "filter.processes"
	pids             = "filter.pids"
	hookTypes        = "filter.hook-types"
	excludeProcesses = "filter.exclude-processes"
	excludePids      = "filter.exclude-pids"
)

// Config determines which hooks are reported.
type Config struct {
	// Processes contains process name patterns. A hook is wanted if its
	// owner, origin or target thread belongs to a matching process.
	Processes []string `json:"processes" yaml:"processes"`
	// Pids contains process identifiers the hook threads are matched against.
	Pids []uint `json:"pids" yaml:"pids"`
	// HookTypes restricts the reported hooks to the given types.
	HookTypes []string `json:"hook-types" yaml:"hook-types"`
	// ExcludeProcesses contains process name patterns of ignored hooks.
	ExcludeProcesses []string `json:"exclude-processes" yaml:"exclude-processes"`
	// ExcludePids contains process identifiers of ignored hooks.
	ExcludePids []uint `json:"exclude-pids" yaml:"exclude-pids"`
}

// AddFlags registers persistent flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.StringSlice(processes, []string{}, "Comma-separated list of process name patterns. Only hooks involving matching processes are reported")
	flags.StringSlice(pids, []string{}, "Comma-separated list of process identifiers. Only hooks involving these processes are reported")
	flags.StringSlice(hookTypes, []string{}, "Comma-separated list of hook types to report, e.g. WH_KEYBOARD_LL,WH_MOUSE_LL")
	flags.StringSlice(excludeProcesses, []string{}, "Comma-separated list of process name patterns whose hooks are ignored")
	flags.StringSlice(excludePids, []string{}, "Comma-separated list of process identifiers whose hooks are ignored")
}

// InitFromViper initializes filter config from Viper.
func (c *Config) InitFromViper(v *viper.Viper) {
	c.Processes = v.GetStringSlice(processes)
	c.Pids = toPids(v.GetStringSlice(pids))
	c.HookTypes = v.GetStringSlice(hookTypes)
	c.ExcludeProcesses = v.GetStringSlice(excludeProcesses)
	c.ExcludePids = toPids(v.GetStringSlice(excludePids))
}

func toPids(values []string) []uint {
	pids := make([]uint, 0, len(values))
	for _, v := range values {
		pid, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			log.Warnf("ignoring invalid process identifier %q in filter", v)
			continue
		}
		pids = append(pids, uint(pid))
	}
	return pids
}
