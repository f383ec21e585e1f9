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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/shadowsync"
	"github.com/poiesic/shadowsync/api"
	"github.com/poiesic/shadowsync/config"
	"github.com/poiesic/shadowsync/health"
	"github.com/poiesic/shadowsync/ingestion"
	"github.com/poiesic/shadowsync/replay"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shadowsync",
		Usage: "Turn free text into a knowledge graph and a semantic map",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"SHADOWSYNC_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load settings from this .env file",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "AI provider (gemini, openai, mock)",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Model used for extraction and queries",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible API host URL",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API and run the health heartbeat",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Address to listen on",
					},
					&cli.StringSliceFlag{
						Name:  "cors-origin",
						Usage: "Allowed CORS origin (repeatable)",
					},
				},
			},
			{
				Name:   "repl",
				Usage:  "Interactive console: plain lines are ingested, /ask queries the agent",
				Action: replCommand,
			},
			{
				Name:      "ingest",
				Usage:     "Replay a text file (or stdin) line by line through the pipeline",
				ArgsUsage: "[file]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of lines to process in each batch",
						Value: replay.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N lines",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per line when extraction fails",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if c.IsSet("provider") {
		cfg.Provider = c.String("provider")
	}
	if c.IsSet("model") {
		cfg.Model = c.String("model")
	}
	if c.IsSet("host") {
		cfg.Host = c.String("host")
	}
	if c.IsSet("listen") {
		cfg.Listen = c.String("listen")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openEngine(ctx context.Context, cfg *config.Config) (*shadowsync.Engine, error) {
	engine, err := shadowsync.NewEngine(ctx,
		shadowsync.WithAIConfig(cfg.AIConfig()),
		shadowsync.WithLogger(slog.Default()),
		shadowsync.WithSimulatorOptions(health.WithInterval(cfg.Heartbeat)),
		shadowsync.WithPipelineOptions(
			ingestion.WithPoolSize(cfg.PoolSize),
			ingestion.WithStageDelay(cfg.StageDelay),
			ingestion.WithSyncDelay(cfg.SyncDelay),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}
	if engine.CredentialMissing() {
		fmt.Fprintln(os.Stderr, "warning: no API key configured (set API_KEY or GEMINI_API_KEY); ingestion and queries will fail")
	}
	return engine, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Start(); err != nil {
		return fmt.Errorf("failed to start heartbeat: %w", err)
	}

	server, err := api.NewServer(engine, api.Config{
		ListenAddr:  cfg.Listen,
		CORSOrigins: c.StringSlice("cors-origin"),
	}, slog.Default())
	if err != nil {
		return err
	}
	return server.Start(ctx)
}

func replCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(c.Context, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Start(); err != nil {
		return fmt.Errorf("failed to start heartbeat: %w", err)
	}
	return runREPL(c.Context, engine)
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	replayConfig := &replay.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if replayConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if replayConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if replayConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	input := os.Stdin
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	replayer, err := replay.NewReplayer(engine.Pipeline(), replayConfig, os.Stderr, slog.Default())
	if err != nil {
		return err
	}
	if _, err := replayer.Run(ctx, input); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	engine.Pipeline().Wait()

	status, err := engine.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("nodes: %d  edges: %d  vectors: %d  storage: %.3f MB\n",
		status.Nodes, status.Edges, status.Vectors, status.Health.StorageMB)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
