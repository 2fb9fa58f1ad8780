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

// Package commands. This file defines the command that renders the reel with
// ffmpeg.
//
// Logic Flow:
//  1. Read the selected image and audio from the context.
//  2. Build the ffmpeg arguments: loop the still image, scale and pad to the
//     reel format, encode H.264/AAC, stop at the end of the audio.
//  3. Run ffmpeg under the run context, bounded by the configured timeout.
//  4. Register the output as a temporary file and store its path.
package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
)

// maxStderr bounds how much ffmpeg output is kept for error messages.
const maxStderr = 2048

// FFmpegArgs returns the arguments rendering image over audio into out.
func FFmpegArgs(image string, audio string, out string, format model.ReelFormat) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-i", image,
		"-i", audio,
		"-vf", fmt.Sprintf("scale=%d:%d,format=yuv420p", format.Width, format.Height),
		"-c:v", format.VideoCodec,
		"-preset", format.Preset,
		"-c:a", format.AudioCodec,
		"-b:a", format.AudioBitrate,
		"-shortest",
		out,
	}
}

// OutputPath returns <outputDir>/reel_<YYYY-MM-DD>.mp4.
func OutputPath(outputDir string, day time.Time) string {
	return filepath.Join(outputDir, objectstore.ReelKey("reel_", day))
}

// RenderReel runs ffmpeg for the selected pair.
type RenderReel struct {
	cor.BaseCommand
	commandPath string
	format      model.ReelFormat
	outputDir   string
	timeout     time.Duration
}

// NewRenderReel creates the render command.
//
// Inputs:
//   - name: Command name.
//   - commandPath: The ffmpeg binary.
//   - format: Target frame and codecs.
//   - outputDir: Created if missing.
//   - timeout: Upper bound for ffmpeg; zero means none.
//
// Outputs:
//   - *RenderReel: The command.
func NewRenderReel(name string, commandPath string, format model.ReelFormat, outputDir string, timeout time.Duration) *RenderReel {
	out := &RenderReel{
		BaseCommand: *cor.NewBaseCommand(name),
		commandPath: commandPath,
		format:      format,
		outputDir:   outputDir,
		timeout:     timeout,
	}
	out.OutputParamName = ParamReelPath
	return out
}

func (c *RenderReel) IsExecutable(context cor.Context) bool {
	return hasAll(context, ParamSelection)
}

func (c *RenderReel) Execute(chCtx cor.Context) {
	sel := GetSelection(chCtx)

	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		c.Fail(chCtx, fmt.Errorf("failed to create output directory: %w", err))
		return
	}
	out := OutputPath(c.outputDir, RunDate(chCtx))

	ctx := chCtx.GetContext()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.commandPath, FFmpegArgs(sel.Image, sel.Audio, out, c.format)...)
	cmd.Stderr = &stderr

	slog.InfoContext(ctx, "rendering reel", "day", sel.Day, "image", sel.Image, "audio", sel.Audio, "output", out)
	start := time.Now()
	// Registered before running so a partial file is removed too.
	chCtx.AddTempFile(out)
	if err := cmd.Run(); err != nil {
		c.Fail(chCtx, fmt.Errorf("error running ffmpeg: %w: %s", err, tail(stderr.Bytes(), maxStderr)))
		return
	}
	slog.InfoContext(ctx, "reel created", "output", out, "elapsed", time.Since(start).String())

	chCtx.Add(c.GetOutputParam(), out)
	c.Succeed(chCtx)
}

func tail(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}

