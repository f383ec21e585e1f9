package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/shadowsync/storage"
)

// BuildSummary renders the context handed to the responder:
//
//	Entities: <every label, comma separated>
//	Recent Memories: <contents of the last n points, pipe separated>
func BuildSummary(ctx context.Context, graph storage.GraphRepository, vectors storage.VectorRepository, n int) (string, error) {
	labels, err := graph.Labels(ctx)
	if err != nil {
		return "", fmt.Errorf("list labels: %w", err)
	}

	recent, err := vectors.RecentPoints(ctx, n)
	if err != nil {
		return "", fmt.Errorf("list recent points: %w", err)
	}
	memories := make([]string, 0, len(recent))
	for _, point := range recent {
		memories = append(memories, point.Content)
	}

	return "Entities: " + strings.Join(labels, ", ") + "\nRecent Memories: " + strings.Join(memories, " | "), nil
}
