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
package elasticsearch

import (
	"time"

	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/spf13/pflag"
)

const (
	esEnabled             = "output.elasticsearch.enabled"
	esServers             = "output.elasticsearch.servers"
	esTimeout             = "output.elasticsearch.timeout"
	esFlushPeriod         = "output.elasticsearch.flush-period"
	esBulkWorkers         = "output.elasticsearch.bulk-workers"
	esHealthcheck         = "output.elasticsearch.healthcheck"
	esHealthcheckInterval = "output.elasticsearch.healthcheck-interval"
	esHealthcheckTimeout  = "output.elasticsearch.healthcheck-timeout"
	esUsername            = "output.elasticsearch.username"
	esPassword            = "output.elasticsearch.password"
	esSniff               = "output.elasticsearch.sniff"
	esTraceLog            = "output.elasticsearch.trace-log"
	esIndexName           = "output.elasticsearch.index-name"
	esTemplateName        = "output.elasticsearch.template-name"
	esTemplateConfig      = "output.elasticsearch.template-config"
	esGzipCompression     = "output.elasticsearch.gzip-compression"
)

// Config contains the options for tweaking the Elasticsearch output.
type Config struct {
	outputs.TLSConfig `mapstructure:",squash"`
	// Enabled determines whether the Elasticsearch output is enabled.
	Enabled bool `mapstructure:"enabled"`
	// Servers lists the nodes of the cluster.
	Servers []string `mapstructure:"servers"`
	// Timeout specifies the request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// FlushPeriod is the interval at which pending documents are committed.
	FlushPeriod time.Duration `mapstructure:"flush-period"`
	// BulkWorkers is the number of workers committing bulk requests.
	BulkWorkers int `mapstructure:"bulk-workers"`
	// Healthcheck enables the periodic node health checks.
	Healthcheck bool `mapstructure:"healthcheck"`
	// HealthCheckInterval is the interval between node health checks.
	HealthCheckInterval time.Duration `mapstructure:"healthcheck-interval"`
	// HealthCheckTimeout is the timeout of a single health check.
	HealthCheckTimeout time.Duration `mapstructure:"healthcheck-timeout"`
	// Username is the user name for the basic HTTP authentication.
	Username string `mapstructure:"username"`
	// Password is the password for the basic HTTP authentication.
	Password string `mapstructure:"password"`
	// Sniff enables the discovery of the cluster nodes.
	Sniff bool `mapstructure:"sniff"`
	// TraceLog dumps the requests and responses to the log.
	TraceLog bool `mapstructure:"trace-log"`
	// IndexName is the target index. The %Y, %y, %m, %d and %H specifiers
	// are replaced with the UTC publish time to roll indices per time frame.
	IndexName string `mapstructure:"index-name"`
	// TemplateName is the name of the index template. No template is
	// installed when empty.
	TemplateName string `mapstructure:"template-name"`
	// TemplateConfig overrides the built-in index template body.
	TemplateConfig string `mapstructure:"template-config"`
	// GzipCompression compresses the request bodies.
	GzipCompression bool `mapstructure:"gzip-compression"`
}

// AddFlags registers persistent flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.Bool(esEnabled, false, "Determines whether the Elasticsearch output is enabled")
	flags.StringSlice(esServers, []string{"http://127.0.0.1:9200"}, "Contains a comma separated list of Elasticsearch nodes that comprise the cluster")
	flags.Duration(esTimeout, time.Second*5, "Specifies the request timeout")
	flags.Duration(esFlushPeriod, time.Second, "Specifies the interval at which pending hook events are committed")
	flags.Int(esBulkWorkers, 1, "Represents the number of workers that commit documents to Elasticsearch")
	flags.Bool(esHealthcheck, true, "Enables/disables nodes health checking")
	flags.Duration(esHealthcheckInterval, time.Second*10, "Specifies the interval for checking if the Elasticsearch nodes are available")
	flags.Duration(esHealthcheckTimeout, time.Second*5, "Specifies the timeout for periodic health checks")
	flags.String(esUsername, "", "Identifies the user name for the basic HTTP authentication")
	flags.String(esPassword, "", "Specifies the password for the basic HTTP authentication")
	flags.Bool(esSniff, false, "Enables the discovery of all Elasticsearch nodes in the cluster")
	flags.Bool(esTraceLog, false, "Determines if the Elasticsearch trace log is enabled")
	flags.String(esIndexName, "hookscan-%Y-%m-%d", "Represents the target index for hook events. Time specifiers create indices per time frame")
	flags.String(esTemplateName, "hookscan", "Specifies the name of the index template")
	flags.String(esTemplateConfig, "", "Contains the full JSON body of the index template")
	flags.Bool(esGzipCompression, false, "Specifies if gzip compression is enabled")
	outputs.AddTLSFlags(flags, outputs.Elasticsearch)
}
