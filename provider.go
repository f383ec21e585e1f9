package shadowsync

import (
	"context"
	"fmt"

	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/ai/gemini"
	"github.com/poiesic/shadowsync/ai/mock"
	"github.com/poiesic/shadowsync/ai/openai"
)

// NewProvider builds the provider named by config.Provider. A missing API key
// is not an error; the provider then fails every call closed.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, config)
	case ai.ProviderOpenAI:
		return openai.NewProvider(config)
	case ai.ProviderMock:
		return mock.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, config.Provider)
	}
}
