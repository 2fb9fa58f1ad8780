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

// Package cor (Chain of Responsibility). This file defines BaseCommand, the
// struct embedded by every concrete command. It carries the command's name,
// its context parameter keys, whether it is optional, and its telemetry
// instruments.
package cor

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// MeterName is the instrumentation scope for all command metrics.
const MeterName = "github.com/jaycherian/gcp-go-daily-reels"

// BaseCommand provides the common fields and default method implementations
// for the Command interface.
type BaseCommand struct {
	Name            string              // Unique name used for tracing, metrics and error keys.
	InputParamName  string              // Context key of the primary input; defaults to CtxIn.
	OutputParamName string              // Context key of the primary output; defaults to CtxOut.
	Optional        bool                // When true the chain demotes this command's failures to warnings.
	Tracer          trace.Tracer        // Tracer for command spans.
	Meter           metric.Meter        // Meter for command metrics.
	SuccessCounter  metric.Int64Counter // Incremented on success.
	ErrorCounter    metric.Int64Counter // Incremented on failure.
}

// NewBaseCommand creates a critical BaseCommand with success and error
// counters named "<name>.counter.success" and "<name>.counter.error".
//
// Inputs:
//   - name: The unique name of the command.
//
// Outputs:
//   - *BaseCommand: The initialized base command.
func NewBaseCommand(name string) *BaseCommand {
	meter := otel.Meter(MeterName)

	successCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.success", name))
	if err != nil {
		slog.Warn("failed to create success counter", "command", name, "error", err)
	}
	errorCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.error", name))
	if err != nil {
		slog.Warn("failed to create error counter", "command", name, "error", err)
	}

	return &BaseCommand{
		Name:           name,
		Tracer:         otel.Tracer(name),
		Meter:          meter,
		SuccessCounter: successCounter,
		ErrorCounter:   errorCounter,
	}
}

// NewOptionalCommand creates a BaseCommand whose failures never fail a run.
func NewOptionalCommand(name string) *BaseCommand {
	out := NewBaseCommand(name)
	out.Optional = true
	return out
}

// GetName returns the command's name.
func (c *BaseCommand) GetName() string {
	return c.Name
}

// IsExecutable is the default precondition: a Go context is set and the
// primary input is present.
func (c *BaseCommand) IsExecutable(context Context) bool {
	return context != nil && context.Get(c.GetInputParam()) != nil && context.GetContext() != nil
}

// IsOptional reports whether failures of this command are swallowed.
func (c *BaseCommand) IsOptional() bool {
	return c.Optional
}

// GetInputParam returns InputParamName, or CtxIn when unset.
func (c *BaseCommand) GetInputParam() string {
	if len(c.InputParamName) == 0 {
		return CtxIn
	}
	return c.InputParamName
}

// GetOutputParam returns OutputParamName, or CtxOut when unset.
func (c *BaseCommand) GetOutputParam() string {
	if len(c.OutputParamName) == 0 {
		return CtxOut
	}
	return c.OutputParamName
}

func (c *BaseCommand) GetTracer() trace.Tracer {
	return c.Tracer
}

func (c *BaseCommand) GetMeter() metric.Meter {
	return c.Meter
}

func (c *BaseCommand) GetSuccessCounter() metric.Int64Counter {
	return c.SuccessCounter
}

func (c *BaseCommand) GetErrorCounter() metric.Int64Counter {
	return c.ErrorCounter
}

// Fail increments the error counter and records err on the context under the
// command's name.
func (c *BaseCommand) Fail(context Context, err error) {
	c.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(c.GetName(), err)
}

// Succeed increments the success counter.
func (c *BaseCommand) Succeed(context Context) {
	c.GetSuccessCounter().Add(context.GetContext(), 1)
}
