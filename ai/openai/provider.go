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
	"log/slog"

	"github.com/poiesic/shadowsync/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// The extractor and responder share one client.
type Provider struct {
	config    *ai.Config
	extractor *Extractor
	responder *Responder
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use. Without an API key the
// provider is still returned; its services fail closed.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newClient(config)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-provider")
	if client == nil {
		logger.Warn("no API key configured; extraction and queries are disabled")
	}

	return &Provider{
		config:    config,
		extractor: newExtractor(config, client),
		responder: newResponder(client),
		logger:    logger,
	}, nil
}

// Extractor returns the knowledge extraction service.
func (p *Provider) Extractor() ai.Extractor {
	return p.extractor
}

// Responder returns the question answering service.
func (p *Provider) Responder() ai.Responder {
	return p.responder
}

// CredentialMissing reports whether the provider runs without an API key.
func (p *Provider) CredentialMissing() bool {
	return !p.config.HasCredential()
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying client doesn't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
