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

// Package workflow_test runs the daily reel workflow end to end against local
// fixtures: a pool in a temp dir, an in-memory progress record and bucket, a
// recording notifier and a shell script standing in for ffmpeg.
package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-daily-reels/internal/caption"
	"github.com/jaycherian/gcp-go-daily-reels/internal/cloud"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/progress"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/series"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/workflow"
	"github.com/jaycherian/gcp-go-daily-reels/internal/notify"
	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const tName = "github.com/jaycherian/gcp-go-daily-reels/tests/workflow"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

// fakeFFmpeg writes a few bytes to its last argument, or fails.
const fakeFFmpeg = `#!/bin/sh
for a; do out="$a"; done
printf 'fake reel' > "$out"
`

const failingFFmpeg = `#!/bin/sh
echo "Invalid data found when processing input" >&2
exit 1
`

var runDate = time.Date(2025, 2, 15, 7, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu          sync.Mutex
	ready       []notify.ReadyMessage
	lowStock    []notify.LowStockMessage
	readyErr    error
	lowStockErr error
}

func (r *recordingNotifier) ReelReady(_ context.Context, msg notify.ReadyMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readyErr != nil {
		return r.readyErr
	}
	r.ready = append(r.ready, msg)
	return nil
}

func (r *recordingNotifier) LowStock(_ context.Context, msg notify.LowStockMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lowStockErr != nil {
		return r.lowStockErr
	}
	r.lowStock = append(r.lowStock, msg)
	return nil
}

type recordingEvents struct {
	events []model.ReelPublished
	err    error
}

func (r *recordingEvents) Publish(_ context.Context, event model.ReelPublished) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

type recordingInserter struct {
	rows []interface{}
	err  error
}

func (r *recordingInserter) Put(_ context.Context, src interface{}) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, src)
	return nil
}

type staticGenerator struct {
	text string
	err  error
}

func (s staticGenerator) Name() string { return "static" }

func (s staticGenerator) Generate(context.Context, string) (string, error) {
	return s.text, s.err
}

// fixture is one isolated run environment.
type fixture struct {
	t        *testing.T
	dir      string
	config   *cloud.Config
	progress *progress.MemoryStore
	bucket   *objectstore.MemoryStore
	notifier *recordingNotifier
	deps     workflow.Dependencies
}

func newFixture(t *testing.T, pairs int) *fixture {
	t.Helper()
	dir := t.TempDir()

	config := cloud.NewConfig()
	config.Pool.ImagesDir = filepath.Join(dir, "images")
	config.Pool.AudioDir = filepath.Join(dir, "audio")
	config.Application.OutputDir = filepath.Join(dir, "output")
	config.Render.FFmpegPath = writeScript(t, dir, "ffmpeg", fakeFFmpeg)

	require.NoError(t, os.MkdirAll(config.Pool.ImagesDir, 0o755))
	require.NoError(t, os.MkdirAll(config.Pool.AudioDir, 0o755))
	for i := 0; i < pairs; i++ {
		touch(t, filepath.Join(config.Pool.ImagesDir, fmt.Sprintf("img_%02d.jpg", i)))
		touch(t, filepath.Join(config.Pool.AudioDir, fmt.Sprintf("track_%02d.mp3", i)))
	}

	captioner, err := caption.NewCaptioner(staticGenerator{text: "Day 1/365 — \"Soft Tide\""}, caption.Options{Signature: "— Rufas Sam"})
	require.NoError(t, err)

	f := &fixture{
		t:        t,
		dir:      dir,
		config:   config,
		progress: progress.NewMemoryStore(),
		bucket:   objectstore.NewMemoryStore("ig-reels"),
		notifier: &recordingNotifier{},
	}
	f.deps = workflow.Dependencies{
		Selector:  series.NewSelector(f.progress, series.FixedSeed(42)),
		Store:     f.bucket,
		Captioner: captioner,
		Notifier:  f.notifier,
		Now:       func() time.Time { return runDate },
	}
	return f
}

func (f *fixture) run() (*workflow.Result, error) {
	ctx, span := tracer.Start(context.Background(), f.t.Name())
	defer span.End()
	result, err := workflow.NewDailyReelWorkflow(f.config, f.deps).Run(ctx)
	logger.InfoContext(ctx, "run finished", "test", f.t.Name(), "error", err)
	return result, err
}

func (f *fixture) record() model.Progress {
	p, err := f.progress.Load(context.Background())
	require.NoError(f.t, err)
	return p
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0o644))
}

func writeScript(t *testing.T, dir string, name string, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

var errBoom = errors.New("boom")

func mustCaptioner(t *testing.T, g caption.Generator) *caption.Captioner {
	t.Helper()
	c, err := caption.NewCaptioner(g, caption.Options{Signature: "— Rufas Sam"})
	require.NoError(t, err)
	return c
}
