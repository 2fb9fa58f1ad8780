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

// Package cor (Chain of Responsibility) provides the building blocks for
// running a daily reel as a sequence of commands. This file defines the core
// interfaces: the shared Context every command reads from and writes to, the
// Command contract, and the Chain that runs commands in order.
//
// Commands are either critical or optional. A failed critical command stops
// the chain and fails the run. A failed optional command (a low-stock alert,
// a ledger row, retention cleanup) is logged and demoted to a warning so the
// primary deliverable is never blocked by a secondary one.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used to pipe the primary value of one command
// into the next.
const (
	// CtxIn is the default key for the primary input of a command. The chain
	// fills it with the previous command's output.
	CtxIn = "__IN__"
	// CtxOut is the default key where a command places its primary output.
	CtxOut = "__OUT__"
)

// Context is the state shared by all commands of one run.
type Context interface {
	// SetContext replaces the Go context, e.g. with a child span's context.
	SetContext(context context.Context)

	// GetContext returns the Go context for cancellation and tracing.
	GetContext() context.Context

	// Add stores a value under key and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes the value stored under key.
	Remove(key string)

	// AddError records a failure, keyed by the command that produced it.
	AddError(key string, err error)

	// TakeError removes and returns the error recorded under key, or nil.
	TakeError(key string) error

	// GetErrors returns all recorded failures.
	GetErrors() map[string]error

	// HasErrors reports whether any failure has been recorded.
	HasErrors() bool

	// AddWarning records a swallowed failure of an optional command.
	AddWarning(key string, err error)

	// GetWarnings returns all swallowed failures.
	GetWarnings() map[string]error

	// AddTempFile registers a local file to delete when the run closes.
	AddTempFile(file string)

	// GetTempFiles returns the registered local files.
	GetTempFiles() []string

	// Close deletes the registered local files.
	Close()
}

// Executable is anything that can run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one step of a run.
type Command interface {
	Executable

	// GetName returns the unique name used for spans, metrics and error keys.
	GetName() string

	// GetInputParam returns the context key of the primary input.
	GetInputParam() string

	// GetOutputParam returns the context key of the primary output.
	GetOutputParam() string

	// IsExecutable reports whether the command's preconditions hold.
	IsExecutable(context Context) bool

	// IsOptional reports whether a failure of this command is swallowed.
	IsOptional() bool

	GetTracer() trace.Tracer

	GetMeter() metric.Meter

	GetSuccessCounter() metric.Int64Counter

	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command that runs other commands in order.
type Chain interface {
	Command

	// ContinueOnFailure makes the chain keep going after a critical failure.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the chain.
	AddCommand(command Command) Chain
}
