// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/shadowsync/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const maxParseAttempts = 3

// Extractor implements ai.Extractor using OpenAI-compatible chat APIs.
type Extractor struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newClient builds a langchaingo client, or nil when no key is configured.
func newClient(config *ai.Config) (llms.Model, error) {
	if !config.HasCredential() {
		return nil, nil
	}
	return openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	)
}

// newExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newExtractor(config *ai.Config, client llms.Model) *Extractor {
	return &Extractor{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-extractor"),
	}
}

// NewExtractor creates a new extractor using the provided configuration.
//
// Returns ai.Extractor interface to enforce abstraction.
func NewExtractor(config *ai.Config) (ai.Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return newExtractor(config, client), nil
}

// Extract asks the model for entities, relationships and a coordinate.
// Malformed JSON is repaired and retried up to three times.
func (e *Extractor) Extract(ctx context.Context, text string) (*ai.Extraction, error) {
	if e.client == nil {
		return nil, ai.ErrMissingCredential
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildExtractionInput(cleanInput(text))),
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(e.temperature), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, fmt.Errorf("openai extract: %w", err)
		}

		if len(response.Choices) < 1 {
			return nil, fmt.Errorf("openai extract: %w", ai.ErrEmptyResponse)
		}

		responseText := repairJSON(stripCodeFences(response.Choices[0].Content))

		var result ai.Extraction
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extraction response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		result.Normalize()
		e.logger.Debug("extracted context",
			"entities", len(result.Entities),
			"relationships", len(result.Relationships))
		return &result, nil
	}

	e.logger.Error("failed to parse extraction response after retries", "err", lastErr)
	return nil, fmt.Errorf("openai extract: %w: %w", ai.ErrInvalidResponse, lastErr)
}
