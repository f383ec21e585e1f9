package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 0.1, cfg.Temperature)
	assert.Empty(t, cfg.APIKey)
	assert.False(t, cfg.HasCredential())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider("openai"),
			WithAPIKey("sk-test"),
			WithHost("http://custom:8080"),
			WithModel("gpt-4o-mini"),
			WithTemperature(0.3),
		)

		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "http://custom:8080", cfg.Host)
		assert.Equal(t, "gpt-4o-mini", cfg.Model)
		assert.Equal(t, 0.3, cfg.Temperature)
		assert.True(t, cfg.HasCredential())
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		wantHost  string
		wantModel string
	}{
		{
			name:      "openai adds /v1 suffix",
			cfg:       NewConfig(WithProvider("OpenAI"), WithHost("http://localhost:11434")),
			wantHost:  "http://localhost:11434/v1",
			wantModel: DefaultOpenAIModel,
		},
		{
			name:      "openai strips trailing slash",
			cfg:       NewConfig(WithProvider("openai"), WithHost("http://localhost:11434/"), WithModel("llama3")),
			wantHost:  "http://localhost:11434/v1",
			wantModel: "llama3",
		},
		{
			name:      "openai default host",
			cfg:       NewConfig(WithProvider("openai")),
			wantHost:  DefaultOpenAIHost,
			wantModel: DefaultOpenAIModel,
		},
		{
			name:      "gemini leaves host alone",
			cfg:       NewConfig(WithHost("http://localhost:11434")),
			wantHost:  "http://localhost:11434",
			wantModel: DefaultGeminiModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Normalize()
			assert.Equal(t, tt.wantHost, tt.cfg.Host)
			assert.Equal(t, tt.wantModel, tt.cfg.Model)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"missing key is valid", NewConfig(WithAPIKey("")), false},
		{"mock without model", NewConfig(WithProvider("mock"), WithModel("")), false},
		{"unknown provider", NewConfig(WithProvider("watson")), true},
		{"empty gemini model", NewConfig(WithModel("")), true},
		{"negative temperature", NewConfig(WithTemperature(-1)), true},
		{"temperature too high", NewConfig(WithTemperature(2.5)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}

	err := NewConfig(WithProvider("watson")).Validate()
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
