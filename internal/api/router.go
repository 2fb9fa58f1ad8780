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

// Package api. This file assembles the gin engine serving the status API.
package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-daily-reels/internal/core/services"
)

// RouterOptions configures the engine built by NewRouter.
type RouterOptions struct {
	ServiceName    string   // Reported by the otelgin spans.
	AllowedOrigins []string // Cross-origin callers; any other origin gets 403.
	ResetToken     string   // Required in ResetTokenHeader; empty disables reset.
}

// NewRouter returns the engine with tracing, CORS and the /api/v1 routes.
// reels may be nil when no object store is configured.
func NewRouter(opts RouterOptions, series *services.SeriesService, reels *services.ReelService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(opts.ServiceName))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return slices.Contains(opts.AllowedOrigins, origin)
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Origin", "Content-Type", ResetTokenHeader},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	apiV1 := r.Group("/api/v1")
	{
		Dashboard(apiV1, series, opts.ResetToken)
		if reels != nil {
			ReelRouter(apiV1, reels)
		}
	}
	return r
}
