package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/shadowsync/ai"
	"google.golang.org/genai"
)

// contentGenerator is the slice of the genai client used here.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Provider implements ai.AIProvider using the Gemini API.
type Provider struct {
	config    *ai.Config
	extractor *Extractor
	responder *Responder
	logger    *slog.Logger
}

// NewProvider creates a Gemini-backed provider. Without an API key no client
// is created and both services fail closed.
//
// Returns ai.AIProvider interface to enforce abstraction.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "gemini-provider")

	var models contentGenerator
	if config.HasCredential() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  config.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: creating client: %w", err)
		}
		models = client.Models
	} else {
		logger.Warn("no API key configured; extraction and queries are disabled")
	}

	return newProvider(config, models, logger), nil
}

func newProvider(config *ai.Config, models contentGenerator, logger *slog.Logger) *Provider {
	return &Provider{
		config: config,
		extractor: &Extractor{
			models:      models,
			model:       config.Model,
			temperature: float32(config.Temperature),
			logger:      slog.Default().With("component", "gemini-extractor"),
		},
		responder: &Responder{
			models: models,
			model:  config.Model,
			logger: slog.Default().With("component", "gemini-responder"),
		},
		logger: logger,
	}
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

// Close is a no-op; the genai client holds no resources needing release.
func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return nil
}

// Extractor implements ai.Extractor with a JSON response schema.
type Extractor struct {
	models      contentGenerator
	model       string
	temperature float32
	logger      *slog.Logger
}

// Extract sends text with the extraction schema and decodes the reply.
func (e *Extractor) Extract(ctx context.Context, text string) (*ai.Extraction, error) {
	if e.models == nil {
		return nil, ai.ErrMissingCredential
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(e.temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   extractionSchema,
	}

	resp, err := e.models.GenerateContent(ctx, e.model, genai.Text(fmt.Sprintf(extractionPrompt, text)), config)
	if err != nil {
		e.logger.Error("gemini processing error", "err", err)
		return nil, fmt.Errorf("gemini extract: %w", err)
	}

	body := responseText(resp)
	if body == "" {
		return nil, fmt.Errorf("gemini extract: %w", ai.ErrEmptyResponse)
	}

	var result ai.Extraction
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		e.logger.Warn("error parsing extraction response", "response", body, "err", err)
		return nil, fmt.Errorf("gemini extract: %w: %w", ai.ErrInvalidResponse, err)
	}

	result.Normalize()
	return &result, nil
}

// Responder implements ai.Responder with the agent system instruction.
type Responder struct {
	models contentGenerator
	model  string
	logger *slog.Logger
}

// Respond answers query against contextSummary.
func (r *Responder) Respond(ctx context.Context, query, contextSummary string) string {
	if r.models == nil {
		return ai.ReplyFor("", ai.ErrMissingCredential)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: agentInstruction}},
		},
	}

	resp, err := r.models.GenerateContent(ctx, r.model, genai.Text(fmt.Sprintf(queryTemplate, contextSummary, query)), config)
	if err != nil {
		r.logger.Error("agent query error", "err", err)
		return ai.ReplyFor("", err)
	}
	return ai.ReplyFor(responseText(resp), nil)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
