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

package caption

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-daily-reels/internal/cloud"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// GenAIGenerator drafts captions with a rate-limited Vertex AI model.
type GenAIGenerator struct {
	model              *cloud.QuotaAwareGenerativeAIModel
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewGenAIGenerator wraps model and registers its token and retry counters.
func NewGenAIGenerator(model *cloud.QuotaAwareGenerativeAIModel) *GenAIGenerator {
	meter := otel.Meter(cloud.MeterName)
	in, err := meter.Int64Counter("caption.genai.tokens.input")
	if err != nil {
		slog.Warn("failed to create counter", "error", err)
	}
	out, err := meter.Int64Counter("caption.genai.tokens.output")
	if err != nil {
		slog.Warn("failed to create counter", "error", err)
	}
	retry, err := meter.Int64Counter("caption.genai.retry")
	if err != nil {
		slog.Warn("failed to create counter", "error", err)
	}
	return &GenAIGenerator{model: model, inputTokenCounter: in, outputTokenCounter: out, retryCounter: retry}
}

func (g *GenAIGenerator) Name() string {
	return "genai:" + g.model.ModelName
}

func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return cloud.GenerateMultiModalResponse(ctx, g.inputTokenCounter, g.outputTokenCounter, g.retryCounter, 0, g.model, cloud.NewTextPart(prompt))
}
