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

// Package caption writes the suggested Instagram caption for a reel. A
// language model (Vertex AI or OpenAI) drafts the text from a themed prompt;
// when no model is configured or the call fails, a fixed fallback caption is
// returned instead, so a run never fails because of its caption.
package caption

import "strings"

// DefaultThemes are the moods a caption is written for.
var DefaultThemes = []string{"sleep", "healing", "focus"}

// DefaultHashtags holds the hashtag block of each default theme.
var DefaultHashtags = map[string]string{
	"sleep":   "#sleepmusic #deeprest #calmnight #relaxingmusic #insomniarelief",
	"healing": "#healingjourney #innerpeace #calmingvibes #mentalwellness #selfhealing",
	"focus":   "#focusmusic #studyvibes #concentration #productivityflow #mindfulworking",
}

// Hashtags returns the hashtag block for theme. Configured blocks win over the
// defaults; unknown themes have none.
func Hashtags(theme string, configured map[string]string) string {
	if tags, ok := configured[theme]; ok {
		return strings.TrimSpace(tags)
	}
	return DefaultHashtags[theme]
}
