package replay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/ai/mock"
	"github.com/poiesic/shadowsync/ingestion"
	"github.com/poiesic/shadowsync/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIngester scripts IngestSync results per line
type fakeIngester struct {
	mu       sync.Mutex
	IngestFn func(text string, attempt int) (*ingestion.Receipt, error)
	attempts map[string]int
}

func (f *fakeIngester) IngestSync(_ context.Context, text string) (*ingestion.Receipt, error) {
	f.mu.Lock()
	if f.attempts == nil {
		f.attempts = make(map[string]int)
	}
	f.attempts[text]++
	attempt := f.attempts[text]
	f.mu.Unlock()
	return f.IngestFn(text, attempt)
}

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestNewReplayer(t *testing.T) {
	_, err := NewReplayer(nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrIngesterRequired)

	_, err = NewReplayer(&fakeIngester{}, &Config{MaxRetries: 0}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	r, err := NewReplayer(&fakeIngester{}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), r.config)
}

func TestReplayer_RetriesExtractionFailures(t *testing.T) {
	ingester := &fakeIngester{
		IngestFn: func(text string, attempt int) (*ingestion.Receipt, error) {
			switch {
			case text == "flaky" && attempt < 3:
				return nil, fmt.Errorf("%w: timeout", ingestion.ErrExtractionFailed)
			case text == "broken":
				return nil, fmt.Errorf("%w: bad json", ingestion.ErrExtractionFailed)
			default:
				return &ingestion.Receipt{Introduced: 1}, nil
			}
		},
	}

	var progress bytes.Buffer
	r, err := NewReplayer(ingester, testConfig(), &progress, nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), strings.NewReader("ok\nflaky\n\nbroken\nfine\n"))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Lines)
	assert.Equal(t, 3, summary.Ingested)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Introduced)

	assert.Equal(t, 3, ingester.attempts["flaky"])
	assert.Equal(t, 3, ingester.attempts["broken"])
	assert.Equal(t, 1, ingester.attempts["ok"])

	assert.Contains(t, progress.String(), "Replaying 4 lines")
	assert.Contains(t, progress.String(), "Replay complete. Ingested 3 of 4 lines (1 failed, +3 nodes)")
}

func TestReplayer_AbortsOnOtherErrors(t *testing.T) {
	storageErr := errors.New("disk full")
	ingester := &fakeIngester{
		IngestFn: func(text string, _ int) (*ingestion.Receipt, error) {
			if text == "second" {
				return nil, storageErr
			}
			return &ingestion.Receipt{}, nil
		},
	}

	r, err := NewReplayer(ingester, testConfig(), nil, nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), strings.NewReader("first\nsecond\nthird"))
	assert.ErrorIs(t, err, storageErr)
	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, ingester.attempts["second"])
	assert.Zero(t, ingester.attempts["third"])
}

func TestReplayer_EmptyInput(t *testing.T) {
	var progress bytes.Buffer
	r, err := NewReplayer(&fakeIngester{}, testConfig(), &progress, nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Zero(t, summary.Lines)
	assert.Contains(t, progress.String(), "Nothing to replay")
}

func TestReplayer_WithPipeline(t *testing.T) {
	graphRepo, vectorRepo, eventRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	extractor := mock.NewMockExtractor()
	calls := 0
	extractor.ExtractFunc = func(_ context.Context, text string) (*ai.Extraction, error) {
		calls++
		if calls == 1 {
			return nil, ai.ErrInvalidResponse
		}
		return &ai.Extraction{
			Entities:   []ai.ExtractedEntity{{Name: strings.Fields(text)[0], Type: "Person"}},
			Coordinate: &ai.Coordinate{X: 1, Y: 2},
		}, nil
	}

	pipeline, err := ingestion.NewPipeline(graphRepo, vectorRepo, eventRepo, extractor,
		ingestion.WithStageDelay(0), ingestion.WithSyncDelay(0))
	require.NoError(t, err)
	defer func() {
		pipeline.Release()
		graphRepo.Close()
		vectorRepo.Close()
		eventRepo.Close()
		backend.Close()
	}()

	r, err := NewReplayer(pipeline, testConfig(), nil, nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), strings.NewReader("Bob arrived.\nAlice left.\nBob returned.\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Ingested)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 2, summary.Introduced)

	nodes, err := graphRepo.NodeCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, nodes)

	points, err := vectorRepo.PointCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, points)
}
