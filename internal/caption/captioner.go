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

package caption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// SourceFallback marks a caption that did not come from a model.
const SourceFallback = "fallback"

// ErrNoGenerator is recorded on fallback captions when no model is configured.
var ErrNoGenerator = errors.New("no caption generator configured")

// Generator drafts caption text from a rendered prompt.
type Generator interface {
	// Name identifies the generator in logs and on the caption.
	Name() string

	// Generate returns the model's caption for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configure a Captioner.
type Options struct {
	Themes       []string          // Picked from uniformly; DefaultThemes when empty.
	Hashtags     map[string]string // Overrides of DefaultHashtags.
	Prompt       string            // Template text; DefaultPrompt when empty.
	Signature    string            // Appended to every caption after a blank line.
	SeriesLength int               // Shown as "Day N/<SeriesLength>"; 365 when zero.
}

// Captioner produces the caption of a day's reel.
type Captioner struct {
	generator Generator
	prompt    *Prompt
	opts      Options
	intN      func(n int) int
}

// NewCaptioner returns a Captioner using generator, which may be nil.
//
// Inputs:
//   - generator: The model, or nil to always use the fallback.
//   - opts: Themes, hashtags, prompt and signature.
//
// Outputs:
//   - *Captioner: The captioner.
//   - error: The prompt template does not parse.
func NewCaptioner(generator Generator, opts Options) (*Captioner, error) {
	prompt, err := ParsePrompt(opts.Prompt)
	if err != nil {
		return nil, err
	}
	if len(opts.Themes) == 0 {
		opts.Themes = DefaultThemes
	}
	if opts.SeriesLength <= 0 {
		opts.SeriesLength = 365
	}
	return &Captioner{generator: generator, prompt: prompt, opts: opts, intN: rand.IntN}, nil
}

// WithThemePicker replaces the random theme choice; tests pass a fixed one.
func (c *Captioner) WithThemePicker(intN func(n int) int) *Captioner {
	c.intN = intN
	return c
}

// Theme picks a theme.
func (c *Captioner) Theme() string {
	return c.opts.Themes[c.intN(len(c.opts.Themes))]
}

// Fallback returns the caption used when no model answers.
func Fallback(day int, seriesLength int, signature string) string {
	text := fmt.Sprintf(`Day %d/%d — "Calm & Release"

Close your eyes.
Let your body soften.

Save this for tonight 🌿

#calm #peace #relaxation`, day, seriesLength)
	return sign(text, signature)
}

func sign(text string, signature string) string {
	text = strings.TrimSpace(text)
	if signature == "" {
		return text
	}
	return text + "\n\n" + signature
}

// Caption writes the caption for day. It never fails: model errors produce a
// fallback caption with Err set.
func (c *Captioner) Caption(ctx context.Context, day int) model.Caption {
	theme := c.Theme()
	fallback := func(err error) model.Caption {
		slog.WarnContext(ctx, "caption generation failed, using fallback", "day", day, "error", err)
		return model.Caption{
			Text:     Fallback(day, c.opts.SeriesLength, c.opts.Signature),
			Theme:    theme,
			Source:   SourceFallback,
			Fallback: true,
			Err:      err,
		}
	}

	if c.generator == nil {
		return fallback(ErrNoGenerator)
	}

	prompt, err := c.prompt.Render(PromptData{
		Theme:        theme,
		Day:          day,
		SeriesLength: c.opts.SeriesLength,
		Hashtags:     Hashtags(theme, c.opts.Hashtags),
	})
	if err != nil {
		return fallback(err)
	}

	text, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return fallback(fmt.Errorf("%s: %w", c.generator.Name(), err))
	}
	if strings.TrimSpace(text) == "" {
		return fallback(fmt.Errorf("%s returned an empty caption", c.generator.Name()))
	}

	slog.InfoContext(ctx, "caption created", "day", day, "theme", theme, "source", c.generator.Name())
	return model.Caption{
		Text:   sign(text, c.opts.Signature),
		Theme:  theme,
		Source: c.generator.Name(),
	}
}
