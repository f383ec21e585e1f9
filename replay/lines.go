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
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	// DefaultBatchSize is the default number of lines handed to each batch.
	DefaultBatchSize = 10

	maxLineBytes = 1 << 20
)

// ReadLines returns every non-blank line of r with surrounding whitespace
// removed.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}

// LineIterator walks a slice of lines in batches.
type LineIterator struct {
	lines     []string
	batchSize int
}

// NewLineIterator creates a new line iterator.
// batchSize: number of lines per batch (DefaultBatchSize when <= 0)
func NewLineIterator(lines []string, batchSize int) *LineIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &LineIterator{
		lines:     lines,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each batch in order.
// Iteration stops on first error from fn or when all lines are processed.
// Context cancellation is checked between batches.
func (it *LineIterator) ForEach(ctx context.Context, fn func([]string) error) error {
	for i := 0; i < len(it.lines); i += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(i+it.batchSize, len(it.lines))
		if err := fn(it.lines[i:end]); err != nil {
			return err
		}
	}

	return ctx.Err()
}
