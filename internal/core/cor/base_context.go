// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor (Chain of Responsibility). This file defines BaseContext, the
// default Context: a key/value store for data passed between commands, maps
// of errors and swallowed warnings, and a list of local files to delete when
// the run ends.
package cor

import (
	"context"
	"log/slog"
	"os"
)

// BaseContext is the default implementation of Context. It is not safe for
// concurrent use; a run executes its commands sequentially.
type BaseContext struct {
	data      map[string]interface{}
	errors    map[string]error
	warnings  map[string]error
	tempFiles []string
	context   context.Context
}

// NewBaseContext returns an empty context. Callers must SetContext before
// executing a chain.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]interface{}),
		errors:    make(map[string]error),
		warnings:  make(map[string]error),
		tempFiles: make([]string, 0),
	}
}

func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close removes every registered temporary file. Files already gone are
// ignored; other failures are logged.
func (c *BaseContext) Close() {
	for _, file := range c.GetTempFiles() {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove temporary file", "file", file, "error", err)
		}
	}
	c.tempFiles = c.tempFiles[:0]
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

func (c *BaseContext) TakeError(key string) error {
	err, ok := c.errors[key]
	if !ok {
		return nil
	}
	delete(c.errors, key)
	return err
}

func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

func (c *BaseContext) AddWarning(key string, err error) {
	c.warnings[key] = err
}

func (c *BaseContext) GetWarnings() map[string]error {
	return c.warnings
}

func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}

// LogWarnings writes every swallowed optional-command error of c.
func LogWarnings(c Context) {
	ctx := c.GetContext()
	if ctx == nil {
		ctx = context.Background()
	}
	for name, err := range c.GetWarnings() {
		slog.WarnContext(ctx, "run warning", "command", name, "error", err)
	}
}
