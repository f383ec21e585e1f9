package replay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/shadowsync/ingestion"
)

// Ingester runs one ingestion to completion. *ingestion.Pipeline satisfies it.
type Ingester interface {
	IngestSync(ctx context.Context, text string) (*ingestion.Receipt, error)
}

// BatchResult counts the outcome of one or more batches.
type BatchResult struct {
	Ingested   int
	Failed     int
	Introduced int
}

func (r *BatchResult) add(other BatchResult) {
	r.Ingested += other.Ingested
	r.Failed += other.Failed
	r.Introduced += other.Introduced
}

// BatchProcessor ingests batches of lines one at a time.
type BatchProcessor struct {
	ingester       Ingester
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts per line when extraction fails
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(ingester Ingester, maxRetries int, retryBaseDelay time.Duration, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		ingester:       ingester,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         logger,
	}
}

// Process ingests every line of the batch. Extraction failures are retried
// and, once attempts run out, counted as failed without stopping the batch.
// Any other error, including context cancellation, aborts.
func (bp *BatchProcessor) Process(ctx context.Context, lines []string) (BatchResult, error) {
	var result BatchResult
	for _, line := range lines {
		var receipt *ingestion.Receipt
		err := RetryWithBackoff(ctx, func() error {
			var err error
			receipt, err = bp.ingester.IngestSync(ctx, line)
			return err
		}, bp.maxRetries, bp.retryBaseDelay, isExtractionFailure)

		switch {
		case err == nil:
			result.Ingested++
			result.Introduced += receipt.Introduced
		case isExtractionFailure(err):
			bp.logger.Warn("giving up on line", "attempts", bp.maxRetries, "err", err)
			result.Failed++
		default:
			return result, err
		}
	}
	return result, nil
}

func isExtractionFailure(err error) bool {
	return errors.Is(err, ingestion.ErrExtractionFailed)
}
