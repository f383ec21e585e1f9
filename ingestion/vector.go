package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/storage"
)

// vectorProcessor appends the extraction's coordinate as a point.
type vectorProcessor struct {
	vectorRepository storage.VectorRepository
	logger           *slog.Logger
}

var _ processor = (*vectorProcessor)(nil)

func newVectorProcessor(vectorRepository storage.VectorRepository, logger *slog.Logger) *vectorProcessor {
	return &vectorProcessor{
		vectorRepository: vectorRepository,
		logger:           logger,
	}
}

// process stores the point carrying the original text as content.
func (v *vectorProcessor) process(ctx context.Context, text string, extraction *ai.Extraction, receipt *Receipt) (core.EventType, string, error) {
	point := &core.VectorPoint{
		ID:       uuid.NewString(),
		X:        extraction.Coordinate.X,
		Y:        extraction.Coordinate.Y,
		Content:  text,
		Category: extraction.Coordinate.Category,
	}
	if err := v.vectorRepository.AppendPoint(ctx, point); err != nil {
		return "", "", fmt.Errorf("append point: %w", err)
	}

	receipt.Point = point
	v.logger.Debug("point stored", "id", point.ID, "category", point.Category)
	return core.EventEmbed, fmt.Sprintf("Generated Vector [%.1f, %.1f]", point.X, point.Y), nil
}
