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

package outputs

import (
	"fmt"
	"github.com/rabbitstack/hookscan/pkg/hook"
	"reflect"
	"strings"
)

var (
	outputs = map[Type]Factory{}
	// ErrInvalidConfig signals an invalid configuration input
	ErrInvalidConfig = func(name Type, c interface{}) error {
		return fmt.Errorf("invalid config for %q output. Got type %v instead of %s.Config", name, reflect.TypeOf(c), strings.ToLower(name.String()))
	}
)

// Client is the sink that receives the hook change events.
type Client interface {
	// Connect establishes the connection to the sink.
	Connect() error
	// Close flushes pending data and releases the sink.
	Close() error
	// Publish emits the change events produced by a single polling cycle.
	Publish(events []hook.Event) error
}

// Factory serves for constructing different output implementations from configuration.
type Factory func(config Config) (OutputGroup, error)

// Type is the alias for the output type.
type Type uint8

const (
	// Console represents the default terminal output.
	Console Type = iota
	// Null discards all events.
	Null
	// HTTP posts events to remote endpoints.
	HTTP
	// AMQP publishes events to the AMQP exchange.
	AMQP
	// Elasticsearch indexes events in the Elasticsearch cluster.
	Elasticsearch
	// Unknown is an undefined output type.
	Unknown
)

// String returns the string representation of the output type.
func (t Type) String() string {
	switch t {
	case Console:
		return "console"
	case Null:
		return "null"
	case HTTP:
		return "http"
	case AMQP:
		return "amqp"
	case Elasticsearch:
		return "elasticsearch"
	default:
		return "unknown"
	}
}

// TypeFromString parses output type from input string.
func TypeFromString(s string) Type {
	switch s {
	case "console":
		return Console
	case "null":
		return Null
	case "http":
		return HTTP
	case "amqp":
		return AMQP
	case "elasticsearch":
		return Elasticsearch
	default:
		return Unknown
	}
}

// OutputGroup is a collection of clients every event batch is published to.
type OutputGroup struct {
	// Clients is the list of clients to which events are forwarded.
	Clients []Client
}

// Success builds the output group from the provided clients.
func Success(clients ...Client) OutputGroup {
	return OutputGroup{Clients: clients}
}

// Fail returns an empty output group and an error signaling the failure that caused the output group initialization.
func Fail(err error) (OutputGroup, error) {
	return OutputGroup{}, err
}

// Register registers a new output implementation. Note this function should be only called once per output.
func Register(typ Type, factory Factory) {
	if _, ok := outputs[typ]; ok {
		panic(fmt.Sprintf("output %q is already registered", typ))
	}
	outputs[typ] = factory
}

// FindFactory locates the output factory.
func FindFactory(typ Type) Factory {
	return outputs[typ]
}

// Load loads the specified output from configuration. The output must have been registered previously.
func Load(typ Type, config Config) (OutputGroup, error) {
	factory := FindFactory(typ)
	if factory == nil {
		return OutputGroup{}, fmt.Errorf("output %q not available in the factory", typ)
	}
	return factory(config)
}

type null struct{}

// Discard returns the client that drops all events.
func Discard() Client { return null{} }

func (null) Connect() error { return nil }
func (null) Close() error   { return nil }
func (null) Publish(events []hook.Event) error {
	nullEvents.Add(int64(len(events)))
	return nil
}

func init() {
	Register(Null, func(Config) (OutputGroup, error) { return Success(null{}), nil })
}
