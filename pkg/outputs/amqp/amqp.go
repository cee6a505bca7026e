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
	"expvar"
	"time"

	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/rabbitstack/hookscan/pkg/outputs"
)

var (
	// amqpErrors counts AMQP delivery errors
	amqpErrors = expvar.NewInt("output.amqp.publish.errors")
	// amqpMessages counts the total number of published messages
	amqpMessages = expvar.NewInt("output.amqp.publish.messages")
)

type rabbitmq struct {
	client *client
}

func init() {
	outputs.Register(outputs.AMQP, initAMQP)
}

func initAMQP(config outputs.Config) (outputs.OutputGroup, error) {
	cfg, ok := config.Output.(Config)
	if !ok {
		return outputs.Fail(outputs.ErrInvalidConfig(outputs.AMQP, config.Output))
	}
	return outputs.Success(&rabbitmq{client: newClient(cfg)}), nil
}

func (q *rabbitmq) Connect() error {
	if err := q.client.connect(true); err != nil {
		return err
	}
	return q.client.declareExchange()
}

func (q *rabbitmq) Close() error {
	if q.client == nil {
		return nil
	}
	return q.client.close()
}

// Publish sends all the events of the cycle in a single message.
func (q *rabbitmq) Publish(events []hook.Event) error {
	if len(events) == 0 {
		return nil
	}
	body, err := outputs.MarshalEvents(events, time.Now())
	if err != nil {
		return err
	}
	if err := q.client.publish(body); err != nil {
		amqpErrors.Add(1)
		return err
	}
	amqpMessages.Add(1)
	return nil
}
