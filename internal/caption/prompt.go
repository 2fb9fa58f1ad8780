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
	"fmt"
	"strings"
	"text/template"
)

// DefaultPrompt asks for a short, fixed-shape meditation caption.
const DefaultPrompt = `Write an Instagram caption for meditation music.

STYLE RULES:
• Theme: {{.Theme}}
• Format EXACTLY like this:

Day {{.Day}}/{{.SeriesLength}} — "Short poetic title"

Line 1 (soft emotion)
Line 2 (calm reassurance)

Final supportive sentence.

Blank line, then these hashtags:

{{.Hashtags}}

Soft tone. Minimal words.
Do NOT exceed 6 lines total.
`

// PromptData is the data the prompt template is executed with.
type PromptData struct {
	Theme        string
	Day          int
	SeriesLength int
	Hashtags     string
}

// Prompt is a parsed prompt template.
type Prompt struct {
	tmpl *template.Template
}

// ParsePrompt parses text, or DefaultPrompt when text is blank.
func ParsePrompt(text string) (*Prompt, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultPrompt
	}
	tmpl, err := template.New("caption").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid caption prompt: %w", err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

// Render executes the template.
func (p *Prompt) Render(data PromptData) (string, error) {
	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render caption prompt: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}
