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

// Package rotate provides the logrus hook that writes log entries to
// size-rotated files.
package rotate

import (
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"runtime"
	"strings"
)

// maxCallerDepth bounds the stack frames inspected when looking for the log call site
const maxCallerDepth = 25

// Config is the configuration for the rotate file hook.
type Config struct {
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Level      logrus.Level
	Formatter  logrus.Formatter
}

// File is the logrus hook writing to the rotated log file.
type File struct {
	config Config
	w      io.WriteCloser
}

// NewHook builds a new rotate file hook.
func NewHook(config Config) (*File, error) {
	if config.Filename == "" {
		return nil, errors.New("rotate hook requires the log file name")
	}
	if config.Formatter == nil {
		return nil, errors.New("rotate hook requires the log formatter")
	}
	return &File{
		config: config,
		w: &lumberjack.Logger{
			Filename:   config.Filename,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
		},
	}, nil
}

// Levels returns the levels up to and including the configured one.
func (f *File) Levels() []logrus.Level {
	return logrus.AllLevels[:f.config.Level+1]
}

// Fire decorates the entry with the call site and writes it to the file.
func (f *File) Fire(entry *logrus.Entry) error {
	e := entry.WithField("source", callSite())
	e.Level = entry.Level
	e.Message = entry.Message
	e.Time = entry.Time
	b, err := f.config.Formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = f.w.Write(b)
	return err
}

// Close closes the underlying log file.
func (f *File) Close() error { return f.w.Close() }

// callSite finds the first frame outside of logrus and this package,
// and renders it as dir/file.go:line.
func callSite() string {
	pcs := make([]uintptr, maxCallerDepth)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !skip(frame.Function) {
			return fmt.Sprintf("%s:%d", shorten(frame.File), frame.Line)
		}
		if !more {
			return ""
		}
	}
}

func skip(function string) bool {
	return strings.Contains(function, "sirupsen/logrus") || strings.Contains(function, "log/rotate.(*File)")
}

// shorten keeps the parent directory and the file name.
func shorten(file string) string {
	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			n++
			if n == 2 {
				return file[i+1:]
			}
		}
	}
	return file
}
