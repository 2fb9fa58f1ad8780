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

// Package cloud provides configuration loading and access to external
// services. This file holds the hierarchical TOML loader and the helper used to
// call the Generative AI API with retries and token accounting.
//
// Functions:
//   - LoadConfig: Reads <prefix>/.env.toml, then overlays
//     <prefix>/.env.<runtime>.toml. The prefix and runtime come from the
//     environment.
//   - GenerateMultiModalResponse: Calls a rate-limited model, retries failed
//     calls and records token usage.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/BurntSushi/toml"
	"google.golang.org/genai"
)

const (
	ConfigFileBaseName  = ".env"                // Base name of configuration files.
	ConfigFileExtension = ".toml"               // Extension of configuration files.
	ConfigSeparator     = "."                   // Separator between base name and runtime.
	EnvConfigFilePrefix = "REELS_CONFIG_PREFIX" // Directory holding the configuration files.
	EnvConfigRuntime    = "REELS_RUNTIME"       // Runtime overlay to apply, e.g. local, test, prod.
	DefaultRuntime      = "local"               // Runtime used when REELS_RUNTIME is unset.
	MaxRetries          = 3                     // Retries of a failed model call.
	MeterName           = "github.com/jaycherian/gcp-go-daily-reels"
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// ConfigFiles returns the base and runtime configuration file paths for the
// given directory and runtime.
func ConfigFiles(prefix string, runtime string) (base string, overlay string) {
	if runtime == "" {
		runtime = DefaultRuntime
	}
	base = filepath.Join(prefix, ConfigFileBaseName+ConfigFileExtension)
	overlay = filepath.Join(prefix, ConfigFileBaseName+ConfigSeparator+runtime+ConfigFileExtension)
	return base, overlay
}

// LoadConfig decodes the base configuration file and then the runtime overlay
// into baseConfig. Missing files are skipped; values in the overlay replace
// those of the base file.
//
// Inputs:
//   - baseConfig: A pointer to the struct to populate, usually from NewConfig.
//
// Outputs:
//   - error: A decode error naming the offending file.
func LoadConfig(baseConfig interface{}) error {
	prefix := os.Getenv(EnvConfigFilePrefix)
	runtime := strings.TrimSpace(os.Getenv(EnvConfigRuntime))

	baseConfigFileName, envConfigFileName := ConfigFiles(prefix, runtime)
	slog.Debug("loading configuration", "base", baseConfigFileName, "overlay", envConfigFileName)

	for _, name := range []string{baseConfigFileName, envConfigFileName} {
		if !fileExists(name) {
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
	}
	return nil
}

// GenerateMultiModalResponse sends content to model and returns the
// concatenated text of all candidates. Failed calls are retried up to
// MaxRetries times.
//
// Inputs:
//   - ctx: Cancels the call and any pending retry.
//   - inputTokenCounter: Counts prompt tokens.
//   - outputTokenCounter: Counts candidate tokens.
//   - retryCounter: Counts retries.
//   - tryCount: The current attempt, starting at 0.
//   - model: The rate-limited model.
//   - content: The prompt.
//
// Outputs:
//   - string: The generated text with code fences removed.
//   - error: The last error once retries are exhausted.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	model *QuotaAwareGenerativeAIModel,
	content []*genai.Content) (value string, err error) {
	resp, err := model.GenerateContent(ctx, content)
	if err != nil {
		if tryCount < MaxRetries && ctx.Err() == nil {
			retryCounter.Add(ctx, 1)
			return GenerateMultiModalResponse(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, content)
		}
		return "", err
	}
	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	value = strings.TrimSpace(sb.String())
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	return strings.TrimSpace(value), nil
}

// NewTextPart wraps a prompt string as user content.
func NewTextPart(in string) []*genai.Content {
	return genai.Text(in)
}
