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
	"context"
	"errors"
	"expvar"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitstack/hookscan/pkg/util/tls"
	"github.com/rabbitstack/hookscan/pkg/util/version"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"net"
	"sync"
	"time"
)

var errNotConnected = errors.New("amqp channel is not open")

var (
	connectionFailures = expvar.NewInt("output.amqp.connection.failures")
	channelFailures    = expvar.NewInt("output.amqp.channel.failures")
)

// client owns the AMQP connection and channel used for publishing hook events.
type client struct {
	conn     *amqp.Connection
	connLock sync.Mutex

	channel *amqp.Channel
	config  Config

	ctx    context.Context
	cancel context.CancelFunc
}

func newClient(config Config) *client {
	ctx, cancel := context.WithCancel(context.Background())
	return &client{config: config, ctx: ctx, cancel: cancel}
}

// connect dials the broker and opens the channel. The health check
// loop is started for the initial connection only.
func (c *client) connect(healthcheck bool) error {
	amqpConfig := amqp.Config{
		Vhost: c.config.Vhost,
		Dial: func(network, addr string) (net.Conn, error) {
			return net.DialTimeout(network, addr, c.config.Timeout)
		},
		SASL: c.config.auth(),
	}
	tlsConfig, err := tls.MakeConfig(c.config.TLSCert, c.config.TLSKey, c.config.TLSCA, c.config.TLSInsecureSkipVerify)
	if err != nil {
		return fmt.Errorf("invalid TLS config: %v", err)
	}
	amqpConfig.TLSClientConfig = tlsConfig

	c.connLock.Lock()
	defer c.connLock.Unlock()
	c.conn, err = amqp.DialConfig(c.config.URL, amqpConfig)
	if err != nil {
		return err
	}
	c.channel, err = c.conn.Channel()
	if err != nil {
		_ = c.conn.Close()
		return fmt.Errorf("unable to open AMQP channel: %v", err)
	}

	log.Infof("established connection to AMQP broker on %s", c.config.URL)

	if healthcheck {
		go c.doHealthcheck()
	}

	return nil
}

// declareExchange creates the exchange in the broker where messages are published.
func (c *client) declareExchange() error {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.channel == nil {
		return errNotConnected
	}
	declare := c.channel.ExchangeDeclare
	if c.config.Passive {
		declare = c.channel.ExchangeDeclarePassive
	}
	if err := declare(c.config.Exchange, c.config.ExchangeType, c.config.Durable, false, false, false, nil); err != nil {
		return fmt.Errorf("unable to declare %s exchange: %v", c.config.Exchange, err)
	}
	return nil
}

// publish sends the byte stream to the exchange.
func (c *client) publish(body []byte) error {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.channel == nil {
		return errNotConnected
	}
	return c.channel.Publish(c.config.Exchange, c.config.RoutingKey, false, false, c.msg(body))
}

func (c *client) msg(body []byte) amqp.Publishing {
	return amqp.Publishing{
		Body:         body,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		AppId:        version.ProductToken(),
		Headers:      c.config.amqpHeaders(),
		DeliveryMode: c.config.deliveryMode(),
	}
}

// doHealthcheck reopens the channel when the broker closes it, and
// redials when the connection is lost. Both are retried with the
// exponential backoff until they succeed or the client is closed.
func (c *client) doHealthcheck() {
	c.connLock.Lock()
	notify := c.conn.NotifyClose(make(chan *amqp.Error, 1))
	cnotify := c.channel.NotifyClose(make(chan *amqp.Error, 1))
	c.connLock.Unlock()

	for {
		select {
		case err, ok := <-cnotify:
			if !ok || err == nil {
				// the channel goes away along with the connection
				cnotify = nil
				continue
			}
			channelFailures.Add(1)
			log.Warnf("channel error: %v. Trying to reopen...", err)
			if e := c.retry(c.reopenChannel); e != nil {
				cnotify = nil
				continue
			}
			log.Info("channel reopened")
			c.connLock.Lock()
			cnotify = c.channel.NotifyClose(make(chan *amqp.Error, 1))
			c.connLock.Unlock()
		case err, ok := <-notify:
			if !ok || err == nil {
				return
			}
			connectionFailures.Add(1)
			log.Warnf("connection error: %v. Trying to reconnect...", err)
			if e := c.retry(func() error { return c.connect(false) }); e != nil {
				return
			}
			log.Info("connection recovered")
			c.connLock.Lock()
			notify = c.conn.NotifyClose(make(chan *amqp.Error, 1))
			cnotify = c.channel.NotifyClose(make(chan *amqp.Error, 1))
			c.connLock.Unlock()
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *client) reopenChannel() error {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.conn == nil || c.conn.IsClosed() {
		return backoff.Permanent(amqp.ErrClosed)
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	c.channel = ch
	return nil
}

func (c *client) retry(op backoff.Operation) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Millisecond * 500
	b.MaxElapsedTime = 0
	return backoff.RetryNotify(op, backoff.WithContext(b, c.ctx), func(err error, d time.Duration) {
		log.Debugf("amqp broker unavailable: %v. Retrying in %v", err, d)
	})
}

// close tears down the underlying AMQP connection.
func (c *client) close() error {
	c.cancel()
	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	if err != nil && err != amqp.ErrClosed {
		return err
	}
	return nil
}
