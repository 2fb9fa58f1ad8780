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

// Package cor (Chain of Responsibility). This file defines BaseChain, the
// default Chain implementation.
//
// Logic Flow:
//  1. A span is opened for the whole chain.
//  2. Each command runs in its own child span. A chain with a recorded
//     critical failure stops unless continueOnFailure is set.
//  3. Commands whose IsExecutable precondition fails are skipped; the skip
//     is recorded on the span and logged.
//  4. When an optional command fails, its error is taken off the context,
//     logged, and kept as a warning, so later commands still run.
//  5. The command's CtxOut is moved to CtxIn for the next command.
//  6. The chain span ends with the final status of the run.
package cor

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// BaseChain executes its commands sequentially.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	commands          []Command
}

// NewBaseChain creates an empty chain.
//
// Inputs:
//   - name: Name used for the chain span and log lines.
//
// Outputs:
//   - *BaseChain: The new chain.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

// ContinueOnFailure controls whether a critical failure stops the chain.
func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

// AddCommand appends a command.
func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// Commands returns the names of the chain's commands in execution order.
func (c *BaseChain) Commands() []string {
	out := make([]string, 0, len(c.commands))
	for _, command := range c.commands {
		out = append(out, command.GetName())
	}
	return out
}

// IsExecutable only requires a Go context; a chain has no primary input.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context.GetContext() != nil
}

// Execute runs all commands against chCtx.
func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()

	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()
	defer chCtx.SetContext(parentCtx)

	for _, command := range c.commands {
		commandContext, commandSpan := c.Tracer.Start(outerCtx, command.GetName())

		if chCtx.HasErrors() && !c.continueOnFailure {
			commandSpan.SetStatus(codes.Error, "previous error on chain; skipping execution")
			commandSpan.End()
			break
		}

		if command.IsExecutable(chCtx) {
			chCtx.SetContext(commandContext)
			command.Execute(chCtx)
			chCtx.SetContext(outerCtx)
		} else {
			slog.Warn("skipping command, preconditions not met", "chain", c.GetName(), "command", command.GetName())
			commandSpan.SetStatus(codes.Error, fmt.Sprintf("command not executable: %s", command.GetName()))
		}

		if command.IsOptional() {
			if err := chCtx.TakeError(command.GetName()); err != nil {
				slog.Warn("optional command failed, continuing", "chain", c.GetName(), "command", command.GetName(), "error", err)
				chCtx.AddWarning(command.GetName(), err)
				commandSpan.RecordError(err)
			}
		}

		if chCtx.HasErrors() {
			commandSpan.SetStatus(codes.Error, "error during or after command execution")
		} else {
			commandSpan.SetStatus(codes.Ok, "command completed successfully")
		}
		commandSpan.End()

		outputValue := chCtx.Get(CtxOut)
		chCtx.Remove(CtxIn)
		if outputValue != nil {
			chCtx.Add(CtxIn, outputValue)
		}
		chCtx.Remove(CtxOut)
	}

	if !chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Ok, "chain completed successfully")
	} else {
		chainSpan.SetStatus(codes.Error, "chain failed to execute")
	}
}
