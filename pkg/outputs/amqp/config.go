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

package amqp

import (
	"time"

	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/spf13/pflag"
	"github.com/streadway/amqp"
)

const (
	amqpURI          = "output.amqp.url"
	amqpTimeout      = "output.amqp.timeout"
	amqpVhost        = "output.amqp.vhost"
	amqpExchange     = "output.amqp.exchange"
	amqpRoutingKey   = "output.amqp.routing-key"
	amqpExchangeType = "output.amqp.exchange-type"
	amqpEnabled      = "output.amqp.enabled"
	amqpPassive      = "output.amqp.passive"
	amqpDurable      = "output.amqp.durable"
	amqpDeliveryMode = "output.amqp.delivery-mode"
	amqpUsername     = "output.amqp.username"
	amqpPassword     = "output.amqp.password"
)

// Config describes the broker connection and the exchange hook events
// are published to.
type Config struct {
	outputs.TLSConfig `mapstructure:",squash"`
	Enabled           bool          `mapstructure:"enabled"`
	URL               string        `mapstructure:"url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Vhost             string        `mapstructure:"vhost"`
	Exchange          string        `mapstructure:"exchange"`
	ExchangeType      string        `mapstructure:"exchange-type"`
	RoutingKey        string        `mapstructure:"routing-key"`
	// Passive only checks the exchange exists instead of declaring it.
	Passive bool `mapstructure:"passive"`
	// Durable exchanges survive broker restarts.
	Durable bool `mapstructure:"durable"`
	// DeliveryMode is transient or persistent.
	DeliveryMode string            `mapstructure:"delivery-mode"`
	Username     string            `mapstructure:"username"`
	Password     string            `mapstructure:"password"`
	Headers      map[string]string `mapstructure:"headers"`
}

// AddFlags registers persistent flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.String(amqpURI, "amqp://localhost:5672", "Broker connection string")
	flags.Duration(amqpTimeout, time.Second*5, "Broker dial timeout")
	flags.String(amqpVhost, "/", "Virtual host on the broker")
	flags.String(amqpExchange, "hookscan", "Exchange that receives the hook events")
	flags.String(amqpExchangeType, "topic", "Exchange type (direct|topic|fanout|headers)")
	flags.String(amqpRoutingKey, "hookscan.events", "Routing key of the published messages")
	flags.Bool(amqpDurable, false, "Declares the exchange as durable")
	flags.Bool(amqpPassive, false, "Fails if the exchange doesn't exist instead of declaring it")
	flags.Bool(amqpEnabled, false, "Indicates if the AMQP output is enabled")
	flags.String(amqpDeliveryMode, "transient", "Message delivery mode (transient|persistent)")
	flags.String(amqpUsername, "", "Username for the plain authentication")
	flags.String(amqpPassword, "", "Password for the plain authentication")
	outputs.AddTLSFlags(flags, outputs.AMQP)
}

func (c Config) amqpHeaders() amqp.Table {
	headers := make(amqp.Table, len(c.Headers))
	for k, v := range c.Headers {
		headers[k] = v
	}
	return headers
}

func (c Config) deliveryMode() uint8 {
	if c.DeliveryMode == "persistent" {
		return amqp.Persistent
	}
	return amqp.Transient
}

func (c Config) auth() []amqp.Authentication {
	if c.Username == "" && c.Password == "" {
		return nil
	}
	return []amqp.Authentication{&amqp.PlainAuth{Username: c.Username, Password: c.Password}}
}
