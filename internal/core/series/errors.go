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

package series

import "errors"

// Selection-path errors. Both abort the run before any side effect; callers
// match them with errors.Is.
var (
	// ErrEmptyPool means no image or no audio file was found.
	ErrEmptyPool = errors.New("images or audio missing")
	// ErrPoolExhausted means every pair has been used; the operator must add
	// source material or reset progress.
	ErrPoolExhausted = errors.New("all reels finished")
	// ErrUnseeded means Pick was handed a record without a shuffle seed.
	ErrUnseeded = errors.New("progress has no shuffle seed")
)
