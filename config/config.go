// Package config loads runtime settings from the environment.
//
// An optional .env file is read first; variables already present in the
// environment win over the file. Every field has a default, so an empty
// environment yields a working, credential-less configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/poiesic/shadowsync/ai"
)

var (
	// ErrInvalidHeartbeat indicates a non-positive heartbeat period.
	ErrInvalidHeartbeat = errors.New("heartbeat must be positive")

	// ErrInvalidDelay indicates a negative stage or sync delay.
	ErrInvalidDelay = errors.New("delays cannot be negative")

	// ErrInvalidListen indicates an empty listen address.
	ErrInvalidListen = errors.New("listen address is required")
)

// Config holds every setting the engine and its surfaces read.
type Config struct {
	Provider     string  `env:"SHADOWSYNC_PROVIDER" envDefault:"gemini"`
	APIKey       string  `env:"API_KEY"`
	GeminiAPIKey string  `env:"GEMINI_API_KEY"`
	Model        string  `env:"SHADOWSYNC_MODEL"`
	Host         string  `env:"SHADOWSYNC_HOST"`
	Temperature  float64 `env:"SHADOWSYNC_TEMPERATURE" envDefault:"0.1"`

	Listen     string        `env:"SHADOWSYNC_LISTEN" envDefault:":8080"`
	Heartbeat  time.Duration `env:"SHADOWSYNC_HEARTBEAT" envDefault:"800ms"`
	StageDelay time.Duration `env:"SHADOWSYNC_STAGE_DELAY" envDefault:"400ms"`
	SyncDelay  time.Duration `env:"SHADOWSYNC_SYNC_DELAY" envDefault:"800ms"`
	PoolSize   int           `env:"SHADOWSYNC_POOL_SIZE" envDefault:"0"`
	LogLevel   string        `env:"SHADOWSYNC_LOG_LEVEL" envDefault:"info"`
}

// Load reads the given .env files (".env" when none are named), then parses
// the process environment. Missing files are not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom parses settings from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Key returns API_KEY, falling back to GEMINI_API_KEY.
func (c *Config) Key() string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.GeminiAPIKey)
}

// AIConfig builds the provider configuration.
func (c *Config) AIConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithProvider(c.Provider),
		ai.WithAPIKey(c.Key()),
		ai.WithHost(c.Host),
		ai.WithTemperature(c.Temperature),
	}
	if c.Model != "" {
		opts = append(opts, ai.WithModel(c.Model))
	}
	return ai.NewConfig(opts...)
}

// Validate checks durations, the listen address and the provider settings.
func (c *Config) Validate() error {
	if c.Heartbeat <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidHeartbeat, c.Heartbeat)
	}
	if c.StageDelay < 0 || c.SyncDelay < 0 {
		return ErrInvalidDelay
	}
	if strings.TrimSpace(c.Listen) == "" {
		return ErrInvalidListen
	}
	return c.AIConfig().Validate()
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps debug, info, warn or error onto a slog level. Anything
// else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
