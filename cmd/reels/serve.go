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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-daily-reels/internal/api"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the status API and run on Pub/Sub triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := ctx.config
			if err := config.Validate(); err != nil {
				return err
			}
			state, err := InitState(cmd.Context(), config)
			if err != nil {
				return err
			}
			defer state.Close()
			return Serve(cmd.Context(), state)
		},
	}
}

// Serve runs the status API and, when a trigger subscription is configured,
// the listener starting a run per message. It returns once ctx is done and
// both have stopped.
func Serve(ctx context.Context, state *StateManager) error {
	config := state.config
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if listener := state.cloud.TriggerListener; listener != nil {
		wf, err := state.NewWorkflow(false)
		if err != nil {
			return err
		}
		listener.SetCommand(wf)
		listener.Listen(ctx)
		defer func() {
			cancel()
			<-listener.Done()
		}()
	}

	r := api.NewRouter(api.RouterOptions{
		ServiceName:    config.Application.Name,
		AllowedOrigins: config.Server.AllowedOrigins,
		ResetToken:     config.Server.ResetToken,
	}, state.seriesService, state.reelService)
	srv := &http.Server{
		Addr:    config.Server.Address,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	slog.InfoContext(ctx, "server ready", "address", config.Server.Address,
		"reset_enabled", config.Server.ResetToken != "")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	// The server has 5 seconds to finish the requests it is handling.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		return err
	}
	return nil
}
