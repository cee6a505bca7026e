//go:build !windows

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

package gui

import (
	"github.com/rabbitstack/hookscan/pkg/errors"
	"github.com/rabbitstack/hookscan/pkg/util/va"
	"time"
)

type unsupported struct{}

// NewSnapshot returns the directory that fails to refresh on this platform.
func NewSnapshot() Directory { return unsupported{} }

func (unsupported) Refresh() error                   { return errors.ErrUnsupportedOS }
func (unsupported) Find(va.Address) (Identity, bool) { return Identity{}, false }
func (unsupported) InitTime() time.Time              { return time.Time{} }
