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

// Package workflow assembles commands into the daily reel run.
//
// Logic Flow of a run:
//  1. (reset requested) Reset the progress record.
//  2. Select the next pair; the advanced record is saved before anything else.
//  3. (optional) Alert when content is running low.
//  4. Render the reel with ffmpeg.
//  5. Publish it and sign a download link.
//  6. (optional) Generate the caption, falling back to a fixed one.
//  7. Email the link and caption.
//  8. (optional) Announce the reel on Pub/Sub.
//  9. (optional) Append the run to the BigQuery ledger.
//  10. (optional) Delete reels past the retention window.
//  11. (optional) Empty the local output directory.
//
// The whole run holds the progress lock when one is configured.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-daily-reels/internal/caption"
	"github.com/jaycherian/gcp-go-daily-reels/internal/cloud"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/commands"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/pool"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/progress"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/series"
	"github.com/jaycherian/gcp-go-daily-reels/internal/notify"
	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
)

// Command names, also used as error and warning keys.
const (
	WorkflowName        = "daily-reel-workflow"
	CmdResetProgress    = "reset-progress"
	CmdSelectPair       = "select-pair"
	CmdLowStockAlert    = "low-stock-alert"
	CmdRenderReel       = "render-reel"
	CmdPublishReel      = "publish-reel"
	CmdGenerateCaption  = "generate-caption"
	CmdNotifyReady      = "notify-ready"
	CmdPublishEvent     = "publish-event"
	CmdRecordRun        = "record-run"
	CmdRetentionCleanup = "retention-cleanup"
	CmdCleanupOutput    = "cleanup-output"
	lockedErrorKey      = "progress-lock"
)

// Dependencies are the collaborators of a run. Events, Ledger and Lock are
// optional; the matching steps are left out when they are nil.
type Dependencies struct {
	Selector  *series.Selector
	Store     objectstore.Store
	Captioner *caption.Captioner
	Notifier  notify.Notifier
	Events    notify.EventPublisher
	Ledger    commands.RowInserter
	Lock      *progress.Lock
	Reset     bool             // Reset progress before selecting.
	Now       func() time.Time // Clock for the run date; time.Now when nil.
}

// DailyReelWorkflow runs one day of the series.
type DailyReelWorkflow struct {
	cor.BaseCommand
	config *cloud.Config
	deps   Dependencies
	chain  *cor.BaseChain
}

// NewDailyReelWorkflow builds the workflow.
//
// Inputs:
//   - config: Pool, render, storage and caption settings.
//   - deps: The collaborators.
//
// Outputs:
//   - *DailyReelWorkflow: The workflow, ready to Execute.
func NewDailyReelWorkflow(config *cloud.Config, deps Dependencies) *DailyReelWorkflow {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Noop{}
	}
	out := &DailyReelWorkflow{
		BaseCommand: *cor.NewBaseCommand(WorkflowName),
		config:      config,
		deps:        deps,
	}
	out.initializeChain()
	return out
}

func (w *DailyReelWorkflow) initializeChain() {
	cfg := w.config
	out := cor.NewBaseChain(w.GetName())

	if w.deps.Reset {
		out.AddCommand(commands.NewResetProgress(CmdResetProgress, w.deps.Selector))
	}

	scanner := &pool.Scanner{
		ImagesDir:       cfg.Pool.ImagesDir,
		AudioDir:        cfg.Pool.AudioDir,
		ImageExtensions: cfg.Pool.ImageExtensions,
		AudioExtensions: cfg.Pool.AudioExtensions,
	}
	out.AddCommand(commands.NewSelectPair(CmdSelectPair, scanner, w.deps.Selector))
	out.AddCommand(commands.NewLowStockAlert(CmdLowStockAlert, w.deps.Notifier, cfg.Pool.LowStockThreshold, cfg.Pool.ImagesDir, cfg.Pool.AudioDir))
	out.AddCommand(commands.NewRenderReel(CmdRenderReel, cfg.Render.FFmpegPath, cfg.Render.Format(), cfg.Application.OutputDir,
		time.Duration(cfg.Render.TimeoutSeconds)*time.Second))
	out.AddCommand(commands.NewPublishReel(CmdPublishReel, w.deps.Store, cfg.Storage.ObjectPrefix, cfg.Storage.SignedURLTTL))
	if w.deps.Captioner != nil {
		out.AddCommand(commands.NewGenerateCaption(CmdGenerateCaption, w.deps.Captioner))
	}
	out.AddCommand(commands.NewNotifyReady(CmdNotifyReady, w.deps.Notifier, cfg.Caption.SeriesLength, cfg.Caption.Signature))
	if w.deps.Events != nil {
		out.AddCommand(commands.NewPublishEvent(CmdPublishEvent, w.deps.Events))
	}
	if w.deps.Ledger != nil {
		out.AddCommand(commands.NewRecordRun(CmdRecordRun, w.deps.Ledger))
	}
	if cfg.Storage.RetentionDays > 0 {
		out.AddCommand(commands.NewRetentionCleanup(CmdRetentionCleanup, w.deps.Store, cfg.Storage.ObjectPrefix, cfg.Storage.RetentionDays))
	}
	out.AddCommand(commands.NewCleanupOutput(CmdCleanupOutput, cfg.Application.OutputDir))

	w.chain = out
}

// Steps returns the command names in execution order.
func (w *DailyReelWorkflow) Steps() []string {
	return w.chain.Commands()
}

func (w *DailyReelWorkflow) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil
}

// Execute runs the chain under the progress lock.
func (w *DailyReelWorkflow) Execute(context cor.Context) {
	if w.deps.Lock != nil {
		unlock, err := w.deps.Lock.TryLock()
		if err != nil {
			context.AddError(lockedErrorKey, err)
			return
		}
		defer unlock()
	}
	if context.Get(commands.ParamRunDate) == nil {
		context.Add(commands.ParamRunDate, w.deps.Now())
	}
	w.chain.Execute(context)
}

// Result summarizes a finished run.
type Result struct {
	Selection *model.Selection
	Published *model.PublishedReel
	Caption   *model.Caption
	Warnings  map[string]error
}

// Run executes the workflow on a fresh chain context, removes the temporary
// files it created and returns what the run produced.
//
// Inputs:
//   - ctx: Cancels the run.
//
// Outputs:
//   - *Result: Whatever the run got to, even on failure.
//   - error: The joined errors of failed critical commands.
func (w *DailyReelWorkflow) Run(ctx context.Context) (*Result, error) {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	defer chCtx.Close()

	w.Execute(chCtx)
	LogOutcome(chCtx)

	return &Result{
		Selection: commands.GetSelection(chCtx),
		Published: commands.GetPublished(chCtx),
		Caption:   commands.GetCaption(chCtx),
		Warnings:  chCtx.GetWarnings(),
	}, RunErrors(chCtx)
}

// RunErrors joins the errors recorded on a context into one error.
func RunErrors(context cor.Context) error {
	var errs []error
	for name, err := range context.GetErrors() {
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return errors.Join(errs...)
}

// LogOutcome writes the end-of-run summary.
func LogOutcome(context cor.Context) {
	ctx := context.GetContext()
	cor.LogWarnings(context)
	if context.HasErrors() {
		for name, err := range context.GetErrors() {
			slog.ErrorContext(ctx, "run failed", "command", name, "error", err)
		}
		return
	}
	attrs := []any{}
	if sel := commands.GetSelection(context); sel != nil {
		attrs = append(attrs, "day", sel.Day, "remaining", sel.Remaining)
	}
	if reel := commands.GetPublished(context); reel != nil {
		attrs = append(attrs, "key", reel.Key)
	}
	slog.InfoContext(ctx, "run complete", attrs...)
}
