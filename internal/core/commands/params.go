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

// Package commands provides the concrete Command implementations that make up
// a daily reel run. Commands exchange their results through named context
// parameters rather than the CtxIn/CtxOut pipe, because optional commands
// sit between the producers and consumers of those results.
package commands

import (
	"time"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/cor"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/model"
)

// Context parameter names.
const (
	ParamRunDate   = "__RUN_DATE__"  // time.Time: the date the reel is for.
	ParamSelection = "__SELECTION__" // *model.Selection
	ParamReelPath  = "__REEL_PATH__" // string: the rendered file.
	ParamPublished = "__PUBLISHED__" // *model.PublishedReel
	ParamCaption   = "__CAPTION__"   // *model.Caption
)

// RunDate returns the run date stored on the context, or today.
func RunDate(context cor.Context) time.Time {
	if d, ok := context.Get(ParamRunDate).(time.Time); ok {
		return d
	}
	return time.Now()
}

// GetSelection returns the selection stored on the context, or nil.
func GetSelection(context cor.Context) *model.Selection {
	sel, _ := context.Get(ParamSelection).(*model.Selection)
	return sel
}

// GetPublished returns the published reel stored on the context, or nil.
func GetPublished(context cor.Context) *model.PublishedReel {
	reel, _ := context.Get(ParamPublished).(*model.PublishedReel)
	return reel
}

// GetCaption returns the caption stored on the context, or nil.
func GetCaption(context cor.Context) *model.Caption {
	c, _ := context.Get(ParamCaption).(*model.Caption)
	return c
}

func hasAll(context cor.Context, params ...string) bool {
	if context == nil || context.GetContext() == nil {
		return false
	}
	for _, p := range params {
		if context.Get(p) == nil {
			return false
		}
	}
	return true
}
