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

// Package cloud. This file wraps a Generative AI model with a token-bucket
// rate limiter so caption requests stay inside the project's quota.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: The model name, its generation settings and
//     a limiter shared by all calls.
package cloud

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ContentGenerator is the subset of *genai.Models used by the wrapper.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// QuotaAwareGenerativeAIModel decorates a model handle with a rate limiter.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig
	ModelName               string
	ModelHandle             ContentGenerator
	RateLimit               *rate.Limiter
}

// NewQuotaAwareModel wraps a model handle.
//
// Inputs:
//   - wrapped: Generation settings sent with every request.
//   - name: The model name, e.g. gemini-2.0-flash.
//   - modelHandle: Usually genai.Client.Models.
//   - requestsPerSecond: Burst size; tokens refill at one per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: The wrapped model.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, modelHandle ContentGenerator, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
}

// NewGenerateContentConfig builds the generation settings for a configured
// model.
func NewGenerateContentConfig(values VertexAiLLMModel) *genai.GenerateContentConfig {
	out := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](values.Temperature),
		TopP:            genai.Ptr[float32](values.TopP),
		TopK:            genai.Ptr[float32](values.TopK),
		MaxOutputTokens: values.MaxTokens,
		SafetySettings:  DefaultSafetySettings,
		Tools:           []*genai.Tool{},
	}
	if values.SystemInstructions != "" {
		out.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}}
	}
	if values.OutputFormat != "" {
		out.ResponseMIMEType = values.OutputFormat
	}
	return out
}

// GenerateContent waits for a limiter token, then calls the model. Waiting
// stops when ctx is done.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
}
