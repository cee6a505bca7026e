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
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitstack/hookscan/pkg/desktop"
	kerrors "github.com/rabbitstack/hookscan/pkg/errors"
	"github.com/rabbitstack/hookscan/pkg/gui"
	"github.com/rabbitstack/hookscan/pkg/handle"
	"github.com/rabbitstack/hookscan/pkg/util/multierror"
	log "github.com/sirupsen/logrus"
)

// FeedControl manages the feeds every hook snapshot is built from: the
// desktops the process is attached to, the USER handle table and the
// GUI thread directory.
type FeedControl struct {
	desktops desktop.Directory
	handles  handle.Table
	threads  gui.Directory

	newDirectory func() (desktop.Directory, error)
	newTable     func() (handle.Table, error)
	newThreads   func() gui.Directory
}

// NewFeedControl creates the feeds backed by the live system.
func NewFeedControl() *FeedControl {
	return &FeedControl{
		newDirectory: desktop.NewDirectory,
		newTable:     handle.NewSharedInfoTable,
		newThreads:   gui.NewSnapshot,
	}
}

// NewStaticFeedControl wraps already built feeds.
func NewStaticFeedControl(desktops desktop.Directory, handles handle.Table, threads gui.Directory) *FeedControl {
	return &FeedControl{
		newDirectory: func() (desktop.Directory, error) { return desktops, nil },
		newTable:     func() (handle.Table, error) { return handles, nil },
		newThreads:   func() gui.Directory { return threads },
	}
}

// Open attaches to the desktops and opens the handle table and thread
// directory. The desktop attach is retried until the timeout elapses,
// since desktops of a session being set up may not be enumerable yet.
func (s *FeedControl) Open(ctx context.Context, attachTimeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = attachTimeout

	attach := func() error {
		dir, err := s.newDirectory()
		if err != nil {
			if errors.Is(err, kerrors.ErrUnsupportedOS) {
				return backoff.Permanent(err)
			}
			return err
		}
		s.desktops = dir
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warnf("desktop attach failed: %v. Retrying in %v", err, wait)
	}
	if err := backoff.RetryNotify(attach, backoff.WithContext(b, ctx), notify); err != nil {
		return err
	}
	for _, d := range s.desktops.Desktops() {
		log.Infof("attached to desktop %s", d)
	}

	handles, err := s.newTable()
	if err != nil {
		return multierror.Wrap(err, s.desktops.Close())
	}
	s.handles = handles
	s.threads = s.newThreads()

	return nil
}

// Refresh recaptures the handle table and the thread directory.
func (s *FeedControl) Refresh() error {
	if err := s.handles.Refresh(); err != nil {
		return err
	}
	return s.threads.Refresh()
}

// Close detaches from the desktops.
func (s *FeedControl) Close() error {
	if s.desktops == nil {
		return nil
	}
	return s.desktops.Close()
}

// Desktops returns the desktop directory.
func (s *FeedControl) Desktops() desktop.Directory { return s.desktops }

// Handles returns the handle table.
func (s *FeedControl) Handles() handle.Table { return s.handles }

// Threads returns the thread directory.
func (s *FeedControl) Threads() gui.Directory { return s.threads }
