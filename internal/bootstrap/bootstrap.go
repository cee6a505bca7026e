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

package bootstrap

import (
	"context"
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/rabbitstack/hookscan/pkg/api"
	"github.com/rabbitstack/hookscan/pkg/api/handler"
	"github.com/rabbitstack/hookscan/pkg/config"
	"github.com/rabbitstack/hookscan/pkg/filter"
	"github.com/rabbitstack/hookscan/pkg/hook"
	"github.com/rabbitstack/hookscan/pkg/outputs"
	"github.com/rabbitstack/hookscan/pkg/outputs/console"
	"github.com/rabbitstack/hookscan/pkg/util/multierror"
	"github.com/rabbitstack/hookscan/pkg/util/spinner"
	"github.com/rabbitstack/hookscan/pkg/util/version"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// App polls the desktop hooks. It keeps two stores, the previous and
// the current snapshot, which swap roles after every cycle. Each cycle
// refreshes the feeds and the current store, diffs it against the
// previous one, and hands the wanted change events over to the outputs.
type App struct {
	config  *config.Config
	feeds   *FeedControl
	filter  filter.Filter
	outputs outputs.OutputGroup
	opts    opts

	prev, cur *hook.Store
	cycles    int
	// limiter throttles the warnings of transient feed failures
	limiter *rate.Limiter
}

// Option enables changing the behaviour of the bootstrap application.
type Option func(*opts)

type opts struct {
	setDebugPrivilege bool
	spinner           bool
	feeds             *FeedControl
	clients           []outputs.Client
	storeOpts         []hook.Option
	fatal             func(error)
}

// WithDebugPrivilege injects the SeDebugPrivilege in the process access token.
func WithDebugPrivilege() Option {
	return func(o *opts) {
		o.setDebugPrivilege = true
	}
}

// WithSpinner shows a spinner while the feeds are opened.
func WithSpinner() Option {
	return func(o *opts) {
		o.spinner = true
	}
}

// WithFeeds replaces the live system feeds.
func WithFeeds(feeds *FeedControl) Option {
	return func(o *opts) {
		o.feeds = feeds
	}
}

// WithClients publishes the change events to the given clients instead
// of the configured output.
func WithClients(clients ...outputs.Client) Option {
	return func(o *opts) {
		o.clients = clients
	}
}

// WithStoreOptions customizes the hook stores.
func WithStoreOptions(options ...hook.Option) Option {
	return func(o *opts) {
		o.storeOpts = options
	}
}

// WithFatalHandler overrides what happens when the snapshot can't be trusted.
// By default, the diagnostics are logged and the process exits.
func WithFatalHandler(fn func(error)) Option {
	return func(o *opts) {
		o.fatal = fn
	}
}

// NewApp constructs a new bootstrap application with the specified configuration
// and a list of options. The configuration must have been initialized.
func NewApp(cfg *config.Config, options ...Option) (*App, error) {
	var opts opts
	for _, opt := range options {
		opt(&opts)
	}
	if opts.fatal == nil {
		opts.fatal = fatal
	}
	if cfg.DebugPrivilege && opts.setDebugPrivilege {
		setDebugPrivilege()
	}

	flt, err := filter.New(cfg.Filter)
	if err != nil {
		return nil, err
	}

	group := outputs.Success(opts.clients...)
	if len(opts.clients) == 0 {
		group, err = outputs.Load(cfg.Output.Type, cfg.Output)
		if err != nil {
			return nil, err
		}
	}

	feeds := opts.feeds
	if feeds == nil {
		feeds = NewFeedControl()
	}

	app := &App{
		config:  cfg,
		feeds:   feeds,
		filter:  flt,
		outputs: group,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(time.Minute), 3),
	}
	return app, nil
}

// Run polls the hooks until the context is canceled or the configured
// number of cycles is reached. Run occupies the calling goroutine, which
// is pinned to its OS thread for the whole lifetime of the stores.
func (f *App) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cfg := f.config
	log.Infof("bootstrapping with pid %d. Version: %s", os.Getpid(), version.Get())

	if err := f.open(ctx); err != nil {
		return err
	}
	for _, c := range f.outputs.Clients {
		if err := c.Connect(); err != nil {
			return err
		}
	}
	if cfg.API.Enabled {
		if err := api.StartServer(cfg); err != nil {
			return err
		}
	}

	f.prev = hook.NewStore(f.opts.storeOpts...)
	f.cur = hook.NewStore(f.opts.storeOpts...)

	interval := cfg.Poll.Interval
	if interval <= 0 {
		interval = time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		if err := f.cycle(); err != nil {
			f.opts.fatal(err)
			return err
		}
		if cfg.Poll.MaxCycles > 0 && f.cycles >= cfg.Poll.MaxCycles {
			log.Infof("stopping after %d snapshots", f.cycles)
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
	}
}

// Snapshot takes a single hook snapshot.
func (f *App) Snapshot(ctx context.Context) (*hook.Store, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := f.open(ctx); err != nil {
		return nil, err
	}
	if err := f.feeds.Refresh(); err != nil {
		return nil, err
	}
	store := hook.NewStore(f.opts.storeOpts...)
	if err := store.Refresh(f.feeds.Desktops(), f.feeds.Handles(), f.feeds.Threads()); err != nil {
		return nil, err
	}
	return store, nil
}

// Filter returns the filter deciding which hooks are reported.
func (f *App) Filter() filter.Filter { return f.filter }

// Cycles returns the number of snapshots taken by Run.
func (f *App) Cycles() int { return f.cycles }

func (f *App) open(ctx context.Context) error {
	if f.opts.spinner {
		s := spinner.Show("attaching to desktops")
		defer s.Stop()
	}
	return f.feeds.Open(ctx, f.config.Poll.AttachTimeout)
}

// cycle takes the next snapshot and publishes its differences from the
// previous one. Only errors that leave the hook stores untrustworthy are
// returned. Transient feed failures skip the cycle.
func (f *App) cycle() error {
	if err := f.feeds.Refresh(); err != nil {
		if f.limiter.Allow() {
			log.Warnf("skipping hook snapshot: %v", err)
		}
		return nil
	}
	if err := f.cur.Refresh(f.feeds.Desktops(), f.feeds.Handles(), f.feeds.Threads()); err != nil {
		return err
	}
	f.cycles++

	if f.config.API.Enabled {
		api.Snapshots().Publish(&handler.SnapshotView{
			Taken:    f.cur.InitTime(),
			Cycle:    uint64(f.cycles),
			Desktops: console.Hooks(f.cur, f.filter.Match),
		})
	}

	if !f.prev.IsValid() {
		log.Infof("initial snapshot has %d hooks on %d desktops", f.cur.Len(), len(f.cur.Desktops()))
	} else {
		events, err := hook.Diff(f.prev, f.cur)
		if err != nil {
			return err
		}
		if events = f.filter.Events(events); len(events) > 0 {
			f.publish(events)
		}
	}

	f.prev, f.cur = f.cur, f.prev

	return nil
}

func (f *App) publish(events []hook.Event) {
	for _, c := range f.outputs.Clients {
		if err := c.Publish(events); err != nil {
			log.Warnf("unable to publish %d hook events: %v", len(events), err)
		}
	}
}

// Shutdown is responsible for tearing down everything gracefully.
func (f *App) Shutdown() error {
	errs := make([]error, 0)
	for _, c := range f.outputs.Clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := f.feeds.Close(); err != nil {
		errs = append(errs, err)
	}
	if f.config.API.Enabled {
		if err := api.CloseServer(); err != nil {
			errs = append(errs, err)
		}
	}
	return multierror.Wrap(errs...)
}

// fatal logs everything known about the corrupted snapshot and
// terminates the process.
func fatal(err error) {
	fields := log.Fields{}
	var ierr *hook.IntegrityError
	if errors.As(err, &ierr) {
		fields["desktop"] = ierr.Desktop
		fields["reason"] = ierr.Reason
		fields["records"] = ierr.Dump()
	}
	var rerr *hook.ReadError
	if errors.As(err, &rerr) {
		fields["desktop"] = rerr.Desktop
		fields["entry"] = rerr.Entry.String()
	}
	log.WithFields(fields).Fatalf("hook snapshot can't be trusted: %v", err)
}
