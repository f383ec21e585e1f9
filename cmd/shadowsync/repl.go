package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/poiesic/shadowsync"
	"github.com/poiesic/shadowsync/health"
)

const replHelp = `Type text to ingest it. Commands:
  /ask <question>  query the agent
  /events          show the event log, newest first
  /graph           show nodes and relationships
  /health          show the health snapshot
  /help            show this help
  /quit            leave`

func runREPL(ctx context.Context, engine *shadowsync.Engine) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "shadowsync> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		return fmt.Errorf("failed to start console: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	fmt.Fprintln(out, replHelp)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := handleLine(ctx, engine, line, out); quit {
			return nil
		}
	}
}

// handleLine runs one console line and reports whether the user asked to quit.
func handleLine(ctx context.Context, engine *shadowsync.Engine, line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	switch command {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(out, replHelp)
	case "/ask":
		reply, err := engine.Ask(ctx, arg)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "agent: %s\n", reply.Content)
	case "/events":
		events, err := engine.EventRepository().List(ctx)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		for _, e := range events {
			fmt.Fprintf(out, "%s  %-8s %s\n", e.Timestamp.Local().Format("15:04:05.000"), e.Type, e.Message)
		}
	case "/graph":
		printGraph(ctx, engine, out)
	case "/health":
		snap := engine.Simulator().Snapshot()
		fmt.Fprintf(out, "consistency %.4f%%  latency %dms  replication %dx  storage %.3fMB  buffer %d%% (%s)\n",
			snap.Consistency, snap.LatencyMs, snap.ReplicationFactor, snap.StorageMB,
			snap.BufferPercent, health.Level(snap.BufferPercent))
	default:
		if strings.HasPrefix(command, "/") {
			fmt.Fprintf(out, "unknown command %s (try /help)\n", command)
			return false
		}
		if err := engine.Ingest(ctx, line); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "ingesting...")
	}
	return false
}

func printGraph(ctx context.Context, engine *shadowsync.Engine, out io.Writer) {
	graph := engine.GraphRepository()
	nodes, err := graph.Nodes(ctx)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	edges, err := graph.Edges(ctx)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%d nodes, %d relationships\n", len(nodes), len(edges))
	for _, n := range nodes {
		fmt.Fprintf(out, "  [%s] %s\n", n.Type, n.Label)
	}
	for _, e := range edges {
		fmt.Fprintf(out, "  %s -%s-> %s\n", e.Source, e.Relation, e.Target)
	}
}
