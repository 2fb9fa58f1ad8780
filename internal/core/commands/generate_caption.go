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

package commands

import (
	"github.com/jaycherian/gcp-go-daily-reels/internal/caption"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
)

// GenerateCaption writes the caption suggestion for the selected day. The
// captioner always returns a caption; when it had to fall back, the reason is
// kept as a warning on the context.
type GenerateCaption struct {
	cor.BaseCommand
	captioner *caption.Captioner
}

func NewGenerateCaption(name string, captioner *caption.Captioner) *GenerateCaption {
	out := &GenerateCaption{BaseCommand: *cor.NewOptionalCommand(name), captioner: captioner}
	out.OutputParamName = ParamCaption
	return out
}

func (c *GenerateCaption) IsExecutable(context cor.Context) bool {
	return hasAll(context, ParamSelection)
}

func (c *GenerateCaption) Execute(context cor.Context) {
	sel := GetSelection(context)
	result := c.captioner.Caption(context.GetContext(), sel.Day)
	if result.Fallback {
		context.AddWarning(c.GetName(), result.Err)
	}
	context.Add(c.GetOutputParam(), &result)
	c.Succeed(context)
}
