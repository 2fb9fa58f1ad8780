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

package caption_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-daily-reels/internal/caption"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signature = "— Rufas Sam"

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func first(int) int { return 0 }

func newCaptioner(t *testing.T, g caption.Generator) *caption.Captioner {
	t.Helper()
	c, err := caption.NewCaptioner(g, caption.Options{Signature: signature})
	require.NoError(t, err)
	return c.WithThemePicker(first)
}

func TestCaptionFromGenerator(t *testing.T) {
	g := &fakeGenerator{text: "Day 3/365 — \"Still Water\"\n\nBreathe.\n"}
	got := newCaptioner(t, g).Caption(context.Background(), 3)

	assert.False(t, got.Fallback)
	assert.NoError(t, got.Err)
	assert.Equal(t, "fake", got.Source)
	assert.Equal(t, "sleep", got.Theme)
	assert.Equal(t, "Day 3/365 — \"Still Water\"\n\nBreathe.\n\n— Rufas Sam", got.Text)

	assert.Contains(t, g.prompt, "Theme: sleep")
	assert.Contains(t, g.prompt, "Day 3/365")
	assert.Contains(t, g.prompt, caption.DefaultHashtags["sleep"])
}

func TestCaptionFallbackOnError(t *testing.T) {
	boom := errors.New("quota exceeded")
	got := newCaptioner(t, &fakeGenerator{err: boom}).Caption(context.Background(), 12)

	assert.True(t, got.Fallback)
	assert.ErrorIs(t, got.Err, boom)
	assert.Equal(t, caption.SourceFallback, got.Source)
	assert.Equal(t, caption.Fallback(12, 365, signature), got.Text)
	assert.True(t, strings.HasPrefix(got.Text, `Day 12/365 — "Calm & Release"`))
	assert.True(t, strings.HasSuffix(got.Text, "\n\n— Rufas Sam"))
}

func TestCaptionFallbackOnEmptyText(t *testing.T) {
	got := newCaptioner(t, &fakeGenerator{text: "  \n"}).Caption(context.Background(), 1)
	assert.True(t, got.Fallback)
	assert.Error(t, got.Err)
}

func TestCaptionWithoutGenerator(t *testing.T) {
	got := newCaptioner(t, nil).Caption(context.Background(), 7)
	assert.True(t, got.Fallback)
	assert.ErrorIs(t, got.Err, caption.ErrNoGenerator)
}

func TestBadPromptIsRejected(t *testing.T) {
	_, err := caption.NewCaptioner(nil, caption.Options{Prompt: "{{.Theme"})
	assert.Error(t, err)
}

func TestUnknownPromptFieldFallsBack(t *testing.T) {
	c, err := caption.NewCaptioner(&fakeGenerator{text: "x"}, caption.Options{Prompt: "{{.Mood}}"})
	require.NoError(t, err)
	got := c.Caption(context.Background(), 2)
	assert.True(t, got.Fallback)
}

func TestHashtags(t *testing.T) {
	assert.Equal(t, caption.DefaultHashtags["focus"], caption.Hashtags("focus", nil))
	assert.Equal(t, "#a #b", caption.Hashtags("focus", map[string]string{"focus": "\n#a #b\n"}))
	assert.Empty(t, caption.Hashtags("joy", nil))
}

func TestThemePickerUsesConfiguredThemes(t *testing.T) {
	c, err := caption.NewCaptioner(nil, caption.Options{Themes: []string{"calm", "dawn"}})
	require.NoError(t, err)
	c.WithThemePicker(func(n int) int { return n - 1 })
	assert.Equal(t, "dawn", c.Theme())
}

type fakeChat struct {
	request openai.ChatCompletionRequest
	resp    openai.ChatCompletionResponse
	err     error
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.request = r
	return f.resp, f.err
}

func TestOpenAIGenerator(t *testing.T) {
	chat := &fakeChat{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "  hello  "}}},
	}}
	g := caption.NewOpenAIGenerator(chat, "", "be calm", 0.6, 150)

	text, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "openai:"+openai.GPT4oMini, g.Name())

	assert.Equal(t, openai.GPT4oMini, chat.request.Model)
	assert.Equal(t, float32(0.6), chat.request.Temperature)
	assert.Equal(t, 150, chat.request.MaxTokens)
	require.Len(t, chat.request.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, chat.request.Messages[0].Role)
	assert.Equal(t, "prompt", chat.request.Messages[1].Content)
}

func TestOpenAIGeneratorNoChoices(t *testing.T) {
	g := caption.NewOpenAIGenerator(&fakeChat{}, "gpt-4o-mini", "", 0.6, 150)
	_, err := g.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}
