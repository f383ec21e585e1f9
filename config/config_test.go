package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/shadowsync/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ai.ProviderGemini, cfg.Provider)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 800*time.Millisecond, cfg.Heartbeat)
	assert.Equal(t, 400*time.Millisecond, cfg.StageDelay)
	assert.Equal(t, 800*time.Millisecond, cfg.SyncDelay)
	assert.Equal(t, 0, cfg.PoolSize)
	assert.Equal(t, 0.1, cfg.Temperature)
	assert.Empty(t, cfg.Key())

	aiCfg := cfg.AIConfig()
	assert.Equal(t, ai.DefaultGeminiModel, aiCfg.Model)
	assert.False(t, aiCfg.HasCredential())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"SHADOWSYNC_PROVIDER":    "openai",
		"API_KEY":                "sk-test",
		"SHADOWSYNC_HOST":        "http://localhost:8000",
		"SHADOWSYNC_MODEL":       "llama3",
		"SHADOWSYNC_LISTEN":      "127.0.0.1:9000",
		"SHADOWSYNC_HEARTBEAT":   "2s",
		"SHADOWSYNC_STAGE_DELAY": "0s",
		"SHADOWSYNC_POOL_SIZE":   "4",
		"SHADOWSYNC_LOG_LEVEL":   "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, 2*time.Second, cfg.Heartbeat)
	assert.Zero(t, cfg.StageDelay)
	assert.Equal(t, 4, cfg.PoolSize)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "sk-test", aiCfg.APIKey)
	assert.Equal(t, "http://localhost:8000/v1", aiCfg.Host)
	assert.Equal(t, "llama3", aiCfg.Model)
}

func TestKey_GeminiFallback(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"GEMINI_API_KEY": "g-key"})
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.Key())

	cfg, err = LoadFrom(map[string]string{"GEMINI_API_KEY": "g-key", "API_KEY": "a-key"})
	require.NoError(t, err)
	assert.Equal(t, "a-key", cfg.Key())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr error
	}{
		{"zero heartbeat", map[string]string{"SHADOWSYNC_HEARTBEAT": "0s"}, ErrInvalidHeartbeat},
		{"negative delay", map[string]string{"SHADOWSYNC_SYNC_DELAY": "-1s"}, ErrInvalidDelay},
		{"unknown provider", map[string]string{"SHADOWSYNC_PROVIDER": "watson"}, ai.ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := LoadFrom(map[string]string{"SHADOWSYNC_HEARTBEAT": "soon"})
	assert.Error(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SHADOWSYNC_PROVIDER=mock\nSHADOWSYNC_LISTEN=:7070\n"), 0o600))

	t.Setenv("SHADOWSYNC_LISTEN", ":6060")
	t.Setenv("SHADOWSYNC_PROVIDER", "")
	os.Unsetenv("SHADOWSYNC_PROVIDER")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderMock, cfg.Provider)
	assert.Equal(t, ":6060", cfg.Listen, "process environment wins over the file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
