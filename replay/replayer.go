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


package replay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Config holds configuration for a replay.
type Config struct {
	// BatchSize is the number of lines to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of lines)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per line
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Summary reports what a replay did.
type Summary struct {
	Lines      int
	Ingested   int
	Failed     int
	Introduced int
	Elapsed    time.Duration
}

// Replayer feeds lines of text through an Ingester.
type Replayer struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	logger    *slog.Logger
}

// NewReplayer creates a new replayer.
// progress: where to write progress output (typically os.Stderr)
func NewReplayer(ingester Ingester, config *Config, progress io.Writer, logger *slog.Logger) (*Replayer, error) {
	if ingester == nil {
		return nil, ErrIngesterRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "replay")

	return &Replayer{
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(ingester, config.MaxRetries, config.RetryDelay, logger),
		logger:    logger,
	}, nil
}

// Run ingests every non-blank line of r in order.
func (r *Replayer) Run(ctx context.Context, input io.Reader) (*Summary, error) {
	lines, err := ReadLines(input)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Lines: len(lines)}
	if len(lines) == 0 {
		fmt.Fprintf(r.progress, "Nothing to replay (0 lines)\n")
		return summary, nil
	}

	fmt.Fprintf(r.progress, "Replaying %d lines (batch size: %d)\n", len(lines), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, len(lines), r.config.ReportInterval)
	tracker.Start()

	var total BatchResult
	err = NewLineIterator(lines, r.config.BatchSize).ForEach(ctx, func(batch []string) error {
		result, err := r.processor.Process(ctx, batch)
		total.add(result)
		tracker.Update(total.Ingested+total.Failed, total.Failed)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		return nil
	})

	summary.Ingested = total.Ingested
	summary.Failed = total.Failed
	summary.Introduced = total.Introduced
	summary.Elapsed = tracker.Elapsed()
	if err != nil {
		return summary, err
	}

	tracker.Finish()
	r.logger.Info("replay complete", "lines", summary.Lines, "ingested", summary.Ingested, "failed", summary.Failed)
	fmt.Fprintf(r.progress, "Replay complete. Ingested %d of %d lines (%d failed, +%d nodes) in %v\n",
		summary.Ingested, summary.Lines, summary.Failed, summary.Introduced, summary.Elapsed.Round(time.Millisecond))

	return summary, nil
}
