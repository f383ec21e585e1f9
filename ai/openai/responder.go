package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/shadowsync/ai"
	"github.com/tmc/langchaingo/llms"
)

// Responder implements ai.Responder using OpenAI-compatible chat APIs.
type Responder struct {
	client llms.Model
	logger *slog.Logger
}

func newResponder(client llms.Model) *Responder {
	return &Responder{
		client: client,
		logger: slog.Default().With("component", "openai-responder"),
	}
}

// Respond answers query from contextSummary. Errors become canned replies.
func (r *Responder) Respond(ctx context.Context, query, contextSummary string) string {
	if r.client == nil {
		return ai.ReplyFor("", ai.ErrMissingCredential)
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, agentSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildQueryInput(query, contextSummary)),
	}

	response, err := r.client.GenerateContent(ctx, content)
	if err != nil {
		r.logger.Error("agent query failed", "err", err)
		return ai.ReplyFor("", err)
	}
	if len(response.Choices) < 1 {
		return ai.ReplyFor("", nil)
	}
	return ai.ReplyFor(response.Choices[0].Content, nil)
}
