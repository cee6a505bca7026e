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
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/olivere/elastic/v7"
	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/rabbitstack/hookscan/pkg/util/tls"
	log "github.com/sirupsen/logrus"
)

// minElasticVersion is the oldest cluster version the client speaks to.
var minElasticVersion, _ = version.NewVersion("7.0")

var (
	// bulkedDocs counts the documents queued in the bulk processor
	bulkedDocs = expvar.NewInt("output.elasticsearch.bulked.docs")
	// committedDocs counts the documents committed to the cluster
	committedDocs = expvar.NewInt("output.elasticsearch.committed.docs")
	// failedDocs counts the documents the cluster rejected
	failedDocs = expvar.NewInt("output.elasticsearch.failed.docs")
)

var errNotConnected = errors.New("elasticsearch bulk processor is not running")

// document is the indexed form of a single hook event.
type document struct {
	Timestamp time.Time `json:"timestamp"`
	Host      string    `json:"host,omitempty"`
	hook.Event
	Changes []hook.Change `json:"changes,omitempty"`
}

type elasticsearch struct {
	client        *elastic.Client
	bulkProcessor *elastic.BulkProcessor
	config        Config
	index         index
	host          string
}

type logger struct{}

func (logger) Printf(format string, v ...interface{}) { log.Debugf(format, v...) }

func init() {
	outputs.Register(outputs.Elasticsearch, initElastic)
}

func initElastic(config outputs.Config) (outputs.OutputGroup, error) {
	cfg, ok := config.Output.(Config)
	if !ok {
		return outputs.Fail(outputs.ErrInvalidConfig(outputs.Elasticsearch, config.Output))
	}
	if len(cfg.Servers) == 0 {
		return outputs.Fail(fmt.Errorf("no servers given for %s output", outputs.Elasticsearch))
	}
	if cfg.IndexName == "" {
		return outputs.Fail(fmt.Errorf("%s output requires the index name", outputs.Elasticsearch))
	}
	if cfg.BulkWorkers < 1 {
		cfg.BulkWorkers = 1
	}
	host, _ := os.Hostname()

	es := &elasticsearch{config: cfg, index: index{config: cfg}, host: host}

	return outputs.Success(es), nil
}

func (e *elasticsearch) Connect() error {
	tlsConfig, err := tls.MakeConfig(e.config.TLSCert, e.config.TLSKey, e.config.TLSCA, e.config.TLSInsecureSkipVerify)
	if err != nil {
		return fmt.Errorf("invalid TLS config: %v", err)
	}
	httpClient := &http.Client{
		Timeout:   e.config.Timeout,
		Transport: &http.Transport{TLSClientConfig: tlsConfig, Proxy: http.ProxyFromEnvironment},
	}

	opts := []elastic.ClientOptionFunc{
		elastic.SetSniff(e.config.Sniff),
		elastic.SetHttpClient(httpClient),
		elastic.SetURL(e.config.Servers...),
		elastic.SetGzip(e.config.GzipCompression),
		elastic.SetHealthcheck(e.config.Healthcheck),
		elastic.SetErrorLog(logger{}),
	}
	if e.config.Healthcheck {
		opts = append(
			opts,
			elastic.SetHealthcheckTimeout(e.config.HealthCheckTimeout),
			elastic.SetHealthcheckInterval(e.config.HealthCheckInterval),
		)
	}
	if e.config.Username != "" && e.config.Password != "" {
		opts = append(opts, elastic.SetBasicAuth(e.config.Username, e.config.Password))
	}
	if e.config.TraceLog {
		opts = append(opts, elastic.SetTraceLog(logger{}))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return err
	}

	ver, err := client.ElasticsearchVersion(e.config.Servers[0])
	if err != nil {
		client.Stop()
		return fmt.Errorf("unable to fetch Elasticsearch version: %v", err)
	}
	v, err := version.NewVersion(ver)
	if err != nil {
		client.Stop()
		return fmt.Errorf("unable to parse Elasticsearch version %s: %v", ver, err)
	}
	if v.LessThan(minElasticVersion) {
		client.Stop()
		return fmt.Errorf("required at least Elasticsearch %s but found version %s", minElasticVersion, ver)
	}

	e.client = client
	e.index.client = client

	ctx := context.Background()
	if err := e.index.putTemplate(ctx); err != nil {
		client.Stop()
		return err
	}

	bulkProcessor, err := client.BulkProcessor().
		Name("hookscan").
		After(afterCommit).
		FlushInterval(e.config.FlushPeriod).
		Workers(e.config.BulkWorkers).
		Do(ctx)
	if err != nil {
		client.Stop()
		return fmt.Errorf("couldn't create Elasticsearch bulk processor: %v", err)
	}
	e.bulkProcessor = bulkProcessor

	log.Infof("established connection to Elasticsearch server(s): %v", e.config.Servers)

	return nil
}

// afterCommit tallies the outcome of every bulk request.
func afterCommit(_ int64, requests []elastic.BulkableRequest, resp *elastic.BulkResponse, err error) {
	if err != nil {
		failedDocs.Add(int64(len(requests)))
		log.Errorf("failed to execute bulk: %v", err)
		return
	}
	failed := resp.Failed()
	for _, item := range failed {
		log.Errorf("failed to index document in %s: %v", item.Index, item.Error)
	}
	failedDocs.Add(int64(len(failed)))
	committedDocs.Add(int64(len(requests) - len(failed)))
}

// Publish queues every event as a separate document. The index is
// resolved from the publish time so all the events of a cycle land
// in the same index.
func (e *elasticsearch) Publish(events []hook.Event) error {
	if e.bulkProcessor == nil {
		return errNotConnected
	}
	now := time.Now()
	name := e.index.name(now)
	for _, evt := range events {
		doc := document{Timestamp: now, Host: e.host, Event: evt, Changes: evt.Changes()}
		e.bulkProcessor.Add(elastic.NewBulkIndexRequest().Index(name).Doc(doc))
		bulkedDocs.Add(1)
	}
	return nil
}

func (e *elasticsearch) Close() error {
	if e.bulkProcessor == nil {
		return nil
	}
	defer e.client.Stop()
	// commit outstanding requests before shutdown
	if err := e.bulkProcessor.Flush(); err != nil {
		return err
	}
	return e.bulkProcessor.Close()
}
