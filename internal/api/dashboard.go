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

// Package api contains the HTTP routes of the status API. This file defines
// the dashboard routes, which report and reset the progress of the series.
//
// Functions:
//   - Dashboard: Registers GET /progress and, when a reset token is
//     configured, POST /progress/reset.
package api

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/progress"
	"github.com/jaycherian/gcp-go-daily-reels/internal/core/services"
)

// ResetTokenHeader carries the shared secret authorizing a progress reset.
const ResetTokenHeader = "X-Reset-Token"

// Dashboard configures the progress routes under r.
//
// Inputs:
//   - r: The router group, usually /api/v1.
//   - series: The service reading and resetting the progress record.
//   - resetToken: The secret POST /progress/reset requires. Empty leaves the
//     route unregistered.
//
// Routes:
//   - GET /progress returns a services.Status.
//   - POST /progress/reset restarts the series at day 1. A missing or wrong
//     token yields 401; a run holding the lock yields 409 Conflict.
func Dashboard(r *gin.RouterGroup, series *services.SeriesService, resetToken string) {
	p := r.Group("/progress")
	{
		p.GET("", func(c *gin.Context) {
			status, err := series.Status(c.Request.Context())
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "failed to read status", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, status)
		})

		if resetToken == "" {
			return
		}
		p.POST("/reset", func(c *gin.Context) {
			given := c.GetHeader(ResetTokenHeader)
			if subtle.ConstantTimeCompare([]byte(given), []byte(resetToken)) != 1 {
				slog.WarnContext(c.Request.Context(), "rejected progress reset", "remote", c.ClientIP())
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid reset token"})
				return
			}
			err := series.Reset(c.Request.Context())
			switch {
			case errors.Is(err, progress.ErrLocked):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			case err != nil:
				slog.ErrorContext(c.Request.Context(), "failed to reset progress", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"index": 0, "next_day": 1})
		})
	}
}
