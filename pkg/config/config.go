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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/rabbitstack/hookscan/pkg/errors"
	"github.com/rabbitstack/hookscan/pkg/filter"
	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/rabbitstack/hookscan/pkg/outputs/amqp"
	"github.com/rabbitstack/hookscan/pkg/outputs/console"
	"github.com/rabbitstack/hookscan/pkg/outputs/elasticsearch"
	"github.com/rabbitstack/hookscan/pkg/outputs/http"
	"github.com/rabbitstack/hookscan/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFile     = "config-file"
	debugPrivilege = "debug-privilege"
)

// Config stores the configuration of every hookscan command.
type Config struct {
	// Poll determines the pacing of the hook scanner.
	Poll PollConfig `json:"poll" yaml:"poll"`
	// Filter decides which hooks are reported.
	Filter filter.Config `json:"filter" yaml:"filter"`
	// API stores global HTTP API preferences
	API APIConfig `json:"api" yaml:"api"`
	// Log contains log-specific configuration options
	Log log.Config `json:"logging" yaml:"logging"`
	// DebugPrivilege indicates whether SeDebugPrivilege is enabled before
	// the thread directory opens foreign processes.
	DebugPrivilege bool `json:"debug-privilege" yaml:"debug-privilege"`

	// Output stores the currently active output config
	Output outputs.Config `json:"-" yaml:"-"`

	flags *pflag.FlagSet
	viper *viper.Viper
	opts  *Options
}

// Options determines which config flags are toggled depending on the command type.
type Options struct {
	run      bool
	snapshot bool
	stats    bool
	print    bool
}

// Option is the type alias for the config option.
type Option func(*Options)

// WithRun determines the main command is executed.
func WithRun() Option {
	return func(o *Options) {
		o.run = true
	}
}

// WithSnapshot determines the snapshot command is executed.
func WithSnapshot() Option {
	return func(o *Options) {
		o.snapshot = true
	}
}

// WithStats determines the stats command is executed.
func WithStats() Option {
	return func(o *Options) {
		o.stats = true
	}
}

// WithPrint determines the config command is executed.
func WithPrint() Option {
	return func(o *Options) {
		o.print = true
	}
}

// NewWithOpts builds a new configuration store from a variety of options.
func NewWithOpts(options ...Option) *Config {
	opts := &Options{}
	for _, opt := range options {
		opt(opts)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	c := &Config{
		viper: v,
		flags: new(pflag.FlagSet),
		opts:  opts,
	}
	c.addFlags()

	return c
}

func (c *Config) addFlags() {
	c.flags.String(configFile, defaultConfigFile(), "Indicates the location of the configuration file")
	if c.opts.run || c.opts.snapshot || c.opts.print {
		c.flags.Bool(debugPrivilege, true, "Enables the SeDebugPrivilege before the GUI threads of foreign processes are queried")
		c.Poll.addFlags(c.flags)
		filter.AddFlags(c.flags)
		console.AddFlags(c.flags)
	}
	if c.opts.run || c.opts.print {
		amqp.AddFlags(c.flags)
		http.AddFlags(c.flags)
		elasticsearch.AddFlags(c.flags)
	}
	if c.opts.run || c.opts.stats || c.opts.print {
		c.API.addFlags(c.flags, c.opts.run || c.opts.print)
	}
	c.Log.AddFlags(c.flags)
}

// MustViperize adds the flag set to the Cobra command and binds them within the Viper flags.
func (c *Config) MustViperize(cmd *cobra.Command) {
	cmd.PersistentFlags().AddFlagSet(c.flags)
	if err := c.viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// Init populates the config sections from the bound flags, environment
// variables and the configuration file.
func (c *Config) Init() error {
	c.Log.InitFromViper(c.viper)
	c.API.initFromViper(c.viper)
	if c.opts.run || c.opts.snapshot || c.opts.print {
		c.Poll.initFromViper(c.viper)
		c.Filter.InitFromViper(c.viper)
		c.DebugPrivilege = c.viper.GetBool(debugPrivilege)
		if err := c.tryLoadOutput(); err != nil {
			return err
		}
	}
	return nil
}

// File returns the path of the configuration file.
func (c *Config) File() string { return c.viper.GetString(configFile) }

// TryLoadFile attempts to load the configuration file from specified path on the file system.
func (c *Config) TryLoadFile(file string) error {
	c.viper.SetConfigFile(file)
	return c.viper.ReadInConfig()
}

// Validate ensures that all configuration options provided by user have the
// expected values. It returns a list of validation errors prefixed with the
// offending configuration property/flag.
func (c *Config) Validate() error {
	file := c.File()
	b, err := os.ReadFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return err
	default:
		var out interface{}
		switch filepath.Ext(file) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(b, &out)
		case ".json":
			err = json.Unmarshal(b, &out)
		default:
			return fmt.Errorf("%s is not a supported config file extension", filepath.Ext(file))
		}
		if err != nil {
			return fmt.Errorf("couldn't read the config file: %v", err)
		}
		if valid, errs := validate(interpolateSchema(), out); !valid || len(errs) > 0 {
			return invalidConfig(errs)
		}
	}
	// now validate the Viper config flags
	if valid, errs := validate(interpolateSchema(), c.viper.AllSettings()); !valid || len(errs) > 0 {
		return invalidConfig(errs)
	}
	return nil
}

func invalidConfig(errs []error) error {
	reasons := make([]string, len(errs))
	for i, err := range errs {
		reasons[i] = err.Error()
	}
	return kerrors.ErrInvalidConfig{Reasons: reasons}
}

// defaultConfigFile resolves the config file that ships next to the binary.
func defaultConfigFile() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("config", "hookscan.yml")
	}
	return filepath.Join(filepath.Dir(exe), "..", "config", "hookscan.yml")
}
