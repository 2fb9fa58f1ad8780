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

// Package cloud. This file reads secrets and per-deployment switches from the
// process environment, after loading an optional .env file, and validates the
// resulting configuration before a run starts.
package cloud

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables holding secrets.
const (
	EnvEmailSender   = "EMAIL_SENDER"
	EnvEmailPassword = "EMAIL_PASSWORD"
	EnvEmailReceiver = "EMAIL_RECEIVER"
	EnvR2AccountId   = "R2_ACCOUNT_ID"
	EnvR2AccessKey   = "R2_ACCESS_KEY"
	EnvR2SecretKey   = "R2_SECRET_KEY"
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvResetProgress = "RESET_PROGRESS"
	EnvResetToken    = "REELS_RESET_TOKEN"
)

// LoadDotEnv loads the given .env files into the process environment.
// Variables already set win over the files; missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if !fileExists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

// ApplyEnv copies secrets and switches from the environment into config.
func ApplyEnv(config *Config) {
	config.Email.Sender = getenv(EnvEmailSender)
	config.Email.Password = getenv(EnvEmailPassword)
	config.Email.Receiver = getenv(EnvEmailReceiver)
	config.Storage.R2 = R2{
		AccountId: getenv(EnvR2AccountId),
		AccessKey: getenv(EnvR2AccessKey),
		SecretKey: getenv(EnvR2SecretKey),
	}
	config.Caption.OpenAIAPIKey = getenv(EnvOpenAIAPIKey)
	config.Server.ResetToken = getenv(EnvResetToken)
	if v, err := strconv.ParseBool(getenv(EnvResetProgress)); err == nil {
		config.ResetProgress = v
	}
}

// Validate checks the settings a daily run depends on. Every missing value is
// reported by name; secrets are never echoed.
func (c *Config) Validate() error {
	var errs []error
	missing := func(name string) {
		errs = append(errs, fmt.Errorf("missing setting: %s", name))
	}

	if c.Pool.ImagesDir == "" {
		missing("pool.images_dir")
	}
	if c.Pool.AudioDir == "" {
		missing("pool.audio_dir")
	}
	if c.Pool.LowStockThreshold < 0 {
		errs = append(errs, fmt.Errorf("pool.low_stock_threshold must not be negative, got %d", c.Pool.LowStockThreshold))
	}

	switch c.Progress.Backend {
	case BackendFile:
		if c.Progress.Path == "" {
			missing("progress.path")
		}
	case BackendGCS:
		if c.Progress.Bucket == "" {
			missing("progress.bucket")
		}
		if c.Progress.Object == "" {
			missing("progress.object")
		}
	default:
		errs = append(errs, fmt.Errorf("unknown progress.backend %q", c.Progress.Backend))
	}

	if c.Application.OutputDir == "" {
		missing("application.output_dir")
	}

	switch c.Storage.Backend {
	case BackendGCS:
	case BackendR2:
		if c.Storage.R2.AccountId == "" {
			missing(EnvR2AccountId)
		}
		if c.Storage.R2.AccessKey == "" {
			missing(EnvR2AccessKey)
		}
		if c.Storage.R2.SecretKey == "" {
			missing(EnvR2SecretKey)
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}
	if c.Storage.Bucket == "" {
		missing("storage.bucket")
	}

	switch c.Caption.Provider {
	case ProviderNone, ProviderOpenAI:
	case ProviderGenAI:
		if _, ok := c.AgentModels[c.Caption.AgentModel]; !ok {
			errs = append(errs, fmt.Errorf("caption.agent_model %q has no [agent_models] entry", c.Caption.AgentModel))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown caption.provider %q", c.Caption.Provider))
	}

	for _, origin := range c.Server.AllowedOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Errorf("server.allowed_origins entry %q must start with http:// or https://", origin))
		}
	}

	if c.Email.Sender == "" {
		missing(EnvEmailSender)
	}
	if c.Email.Password == "" {
		missing(EnvEmailPassword)
	}
	if c.Email.Receiver == "" {
		missing(EnvEmailReceiver)
	}

	return errors.Join(errs...)
}
