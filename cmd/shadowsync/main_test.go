package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/shadowsync"
	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/ai/mock"
	"github.com/poiesic/shadowsync/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

func TestCommands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"serve", "repl", "ingest"} {
		assert.NotNil(t, findCommand(t, app, name))
	}
}

func TestIngestCommandFlags(t *testing.T) {
	missingEnv := filepath.Join(t.TempDir(), "absent.env")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"zero batch size", []string{"--batch-size", "0"}, "batch-size"},
		{"zero report interval", []string{"--report-interval", "0"}, "report-interval"},
		{"zero retries", []string{"--max-retries", "0"}, "max-retries"},
		{"missing file", []string{filepath.Join(t.TempDir(), "nope.txt")}, "failed to open input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"shadowsync", "--env-file", missingEnv, "ingest"}, tt.args...)
			err := newApp().Run(args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("retry-delay has default value", func(t *testing.T) {
		cmd := findCommand(t, newApp(), "ingest")
		var delayFlag *cli.DurationFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.DurationFlag); ok && f.Name == "retry-delay" {
				delayFlag = f
				break
			}
		}
		require.NotNil(t, delayFlag)
		assert.Equal(t, time.Second, delayFlag.Value)
	})
}

func TestIngestCommand_ReplaysFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "memories.txt")
	require.NoError(t, os.WriteFile(input, []byte("Bob met Alice.\n\nCarol joined Bob.\n"), 0o600))

	t.Setenv("SHADOWSYNC_STAGE_DELAY", "1ms")
	t.Setenv("SHADOWSYNC_SYNC_DELAY", "1ms")

	err := newApp().Run([]string{
		"shadowsync", "--env-file", filepath.Join(dir, "absent.env"), "--provider", "mock",
		"ingest", "--retry-delay", "1ms", input,
	})
	require.NoError(t, err)
}

func TestServeCommand_InvalidProvider(t *testing.T) {
	err := newApp().Run([]string{
		"shadowsync", "--env-file", filepath.Join(t.TempDir(), "absent.env"), "--provider", "watson", "serve",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func newTestEngine(t *testing.T) (*shadowsync.Engine, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProvider().(*mock.MockProvider)
	engine, err := shadowsync.NewEngine(context.Background(),
		shadowsync.WithProvider(provider),
		shadowsync.WithMeshDelay(time.Hour),
		shadowsync.WithPipelineOptions(ingestion.WithStageDelay(0), ingestion.WithSyncDelay(0)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine, provider
}

func TestHandleLine(t *testing.T) {
	ctx := context.Background()
	engine, provider := newTestEngine(t)
	provider.GetMockExtractor().ExtractFunc = func(context.Context, string) (*ai.Extraction, error) {
		return &ai.Extraction{
			Entities:      []ai.ExtractedEntity{{Name: "Bob", Type: "Person"}, {Name: "Alice", Type: "Person"}},
			Relationships: []ai.ExtractedRelationship{{Source: "Bob", Target: "Alice", Relation: "met"}},
		}, nil
	}
	provider.GetMockResponder().RespondFunc = func(context.Context, string, string) string {
		return "Bob met Alice."
	}

	var out bytes.Buffer

	assert.False(t, handleLine(ctx, engine, "   ", &out))
	assert.Empty(t, out.String())

	assert.False(t, handleLine(ctx, engine, "Bob met Alice at the cafe.", &out))
	assert.Contains(t, out.String(), "ingesting...")
	engine.Pipeline().Wait()

	out.Reset()
	handleLine(ctx, engine, "/graph", &out)
	assert.Contains(t, out.String(), "2 nodes, 1 relationships")
	assert.Contains(t, out.String(), "[person] Bob")
	assert.Contains(t, out.String(), "Bob -met-> Alice")

	out.Reset()
	handleLine(ctx, engine, "/ask who did Bob meet?", &out)
	assert.Equal(t, "agent: Bob met Alice.\n", out.String())

	out.Reset()
	handleLine(ctx, engine, "/ask", &out)
	assert.Contains(t, out.String(), "error:")

	out.Reset()
	handleLine(ctx, engine, "/events", &out)
	assert.Contains(t, out.String(), "RETRIEVE")
	assert.Contains(t, out.String(), "CAPTURE")

	out.Reset()
	handleLine(ctx, engine, "/health", &out)
	assert.Contains(t, out.String(), "replication 3x")

	out.Reset()
	handleLine(ctx, engine, "/bogus", &out)
	assert.Contains(t, out.String(), "unknown command /bogus")

	assert.True(t, handleLine(ctx, engine, "/quit", &out))
	assert.True(t, strings.Contains(replHelp, "/ask"))
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, tc := range []string{"debug", "info", "warn", "error", "DEBUG"} {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "log-level", Value: "info"},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error { return nil },
				}
				require.NoError(t, app.Run([]string{"test", "--log-level", tc}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := newApp()
		app.Commands = nil
		app.Action = func(c *cli.Context) error {
			assert.Equal(t, "debug", c.String("log-level"))
			return nil
		}
		require.NoError(t, app.Run([]string{"shadowsync", "-l", "debug"}))
	})
}
