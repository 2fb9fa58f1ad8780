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

package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-daily-reels/internal/cloud"
	"github.com/jaycherian/gcp-go-daily-reels/internal/telemetry"
)

// commandContext loads the configuration once and owns the logging and
// telemetry lifecycle shared by every subcommand.
type commandContext struct {
	configDir string
	runtime   string
	envFile   string

	configOnce sync.Once
	config     *cloud.Config
	configErr  error

	closeLog      func()
	shutdownTrace func(context.Context) error
}

func (c *commandContext) ensureConfig(ctx context.Context) (*cloud.Config, error) {
	c.configOnce.Do(func() {
		if err := cloud.LoadDotEnv(c.envFile); err != nil {
			c.configErr = err
			return
		}
		c.config, c.configErr = GetConfig(c.configDir, c.runtime)
		if c.configErr != nil {
			return
		}
		c.closeLog, c.configErr = telemetry.SetupLogging(c.config.Logging.Level, c.config.Logging.File)
		if c.configErr != nil {
			return
		}
		c.shutdownTrace, c.configErr = telemetry.SetupOpenTelemetry(ctx, c.config)
	})
	return c.config, c.configErr
}

func (c *commandContext) close(ctx context.Context) {
	if c.shutdownTrace != nil {
		if err := c.shutdownTrace(ctx); err != nil {
			slog.WarnContext(ctx, "failed to flush telemetry", "error", err)
		}
	}
	if c.closeLog != nil {
		c.closeLog()
	}
}

// GetConfig loads the defaults, the TOML files of runtime from configDir and
// the secrets from the environment. Empty arguments keep the values of
// REELS_CONFIG_PREFIX and REELS_RUNTIME.
func GetConfig(configDir string, runtime string) (*cloud.Config, error) {
	if configDir != "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, configDir); err != nil {
			return nil, err
		}
	}
	if runtime != "" {
		if err := os.Setenv(cloud.EnvConfigRuntime, runtime); err != nil {
			return nil, err
		}
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	cloud.ApplyEnv(config)
	return config, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "reels",
		Short:         "Daily reel automation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig(cmd.Context())
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close(context.WithoutCancel(cmd.Context()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	defaultDir := os.Getenv(cloud.EnvConfigFilePrefix)
	if defaultDir == "" {
		defaultDir = "configs"
	}
	rootCmd.PersistentFlags().StringVar(&ctx.configDir, "config-dir", defaultDir, "Directory holding .env.toml and its runtime overlays")
	rootCmd.PersistentFlags().StringVar(&ctx.runtime, "runtime", strings.TrimSpace(os.Getenv(cloud.EnvConfigRuntime)), "Runtime overlay to apply (default local)")
	rootCmd.PersistentFlags().StringVar(&ctx.envFile, "env-file", ".env", "Optional dotenv file with secrets")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newResetCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newURLCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	return rootCmd
}
