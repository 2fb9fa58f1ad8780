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

// Package api. This file defines the routes over published reels.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/services"
	"github.com/jaycherian/gcp-go-daily-reels/internal/objectstore"
)

// ReelRouter sets up the routes listing reels and re-signing download links.
//
// Routes:
//   - GET /reels lists reels, newest first.
//   - GET /reels/:date/url returns {"url": ...} for the reel of a YYYY-MM-DD
//     date; 400 for a malformed date.
func ReelRouter(r *gin.RouterGroup, reels *services.ReelService) {
	group := r.Group("/reels")
	{
		group.GET("", func(c *gin.Context) {
			out, err := reels.List(c.Request.Context())
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "failed to list reels", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, out)
		})

		group.GET("/:date/url", func(c *gin.Context) {
			date := c.Param("date")
			if _, err := time.Parse(objectstore.DateLayout, date); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			url, err := reels.GenerateSignedURL(c.Request.Context(), date)
			if err != nil {
				slog.WarnContext(c.Request.Context(), "failed to sign reel url", "date", date, "error", err)
				c.JSON(http.StatusNotFound, gin.H{"error": "reel not found"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": url})
		})
	}
}
