package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/shadowsync/ai"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/storage"
)

// graphProcessor merges extracted entities and relationships into the graph.
type graphProcessor struct {
	graphRepository storage.GraphRepository
	now             func() time.Time
	logger          *slog.Logger
}

var _ processor = (*graphProcessor)(nil)

func newGraphProcessor(graphRepository storage.GraphRepository, logger *slog.Logger) *graphProcessor {
	return &graphProcessor{
		graphRepository: graphRepository,
		now:             time.Now,
		logger:          logger,
	}
}

// process upserts one node per entity and appends every relationship.
// The STORE message counts the entities mapped from this extraction; the
// receipt records how many of those labels were new to the graph.
func (g *graphProcessor) process(ctx context.Context, _ string, extraction *ai.Extraction, receipt *Receipt) (core.EventType, string, error) {
	createdAt := g.now().UTC()

	nodes := make([]*core.Node, 0, len(extraction.Entities))
	for _, entity := range extraction.Entities {
		nodes = append(nodes, core.NewNode(entity.Name, core.ClassifyNodeType(entity.Type), createdAt))
	}

	edges := make([]*core.Edge, 0, len(extraction.Relationships))
	for _, rel := range extraction.Relationships {
		edges = append(edges, &core.Edge{
			Source:   rel.Source,
			Target:   rel.Target,
			Relation: rel.Relation,
		})
	}

	introduced, err := g.graphRepository.UpsertNodes(ctx, nodes...)
	if err != nil {
		return "", "", fmt.Errorf("upsert nodes: %w", err)
	}
	if err := g.graphRepository.AppendEdges(ctx, edges...); err != nil {
		return "", "", fmt.Errorf("append edges: %w", err)
	}

	receipt.Introduced = introduced
	g.logger.Debug("graph updated", "entities", len(nodes), "introduced", introduced, "edges", len(edges))
	return core.EventStore, fmt.Sprintf("Updated Knowledge Graph: +%d nodes.", len(nodes)), nil
}
