package storage

import (
	"context"

	"github.com/poiesic/shadowsync/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// Repository calls made with the context passed to fn join the
	// transaction, whichever repository they belong to, as long as the
	// repositories share a backend.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}

// GraphRepository stores the knowledge graph: nodes keyed by label and
// relationships between labels.
type GraphRepository interface {
	Repository
	// UpsertNodes merges nodes by label. A node whose label is already stored
	// replaces the stored node on every field but keeps its original position.
	// New labels are appended in argument order.
	// Returns how many labels were new to the store.
	UpsertNodes(ctx context.Context, nodes ...*core.Node) (int, error)

	// AppendEdges appends relationships unconditionally. Duplicates accumulate
	// and endpoints are not checked against stored nodes.
	AppendEdges(ctx context.Context, edges ...*core.Edge) error

	// NodeCount returns the number of distinct labels stored.
	NodeCount(ctx context.Context) (int, error)

	// EdgeCount returns the number of stored relationships.
	EdgeCount(ctx context.Context) (int, error)

	// Nodes returns every node in insertion order.
	Nodes(ctx context.Context) ([]*core.Node, error)

	// Edges returns every relationship in append order.
	Edges(ctx context.Context) ([]*core.Edge, error)

	// GetNode retrieves a node by label.
	// Returns ErrNotFound if the label is unknown.
	GetNode(ctx context.Context, label string) (*core.Node, error)

	// Labels returns every node label in insertion order.
	Labels(ctx context.Context) ([]string, error)
}

// VectorRepository stores 2D semantic projections of ingested text.
type VectorRepository interface {
	Repository
	// AppendPoint appends a point. An empty ID is replaced with a random UUID.
	AppendPoint(ctx context.Context, point *core.VectorPoint) error

	// PointCount returns the number of stored points.
	PointCount(ctx context.Context) (int, error)

	// Points returns every point in append order.
	Points(ctx context.Context) ([]*core.VectorPoint, error)

	// RecentPoints returns up to n of the most recently appended points,
	// oldest of the window first.
	RecentPoints(ctx context.Context, n int) ([]*core.VectorPoint, error)
}

// EventRepository is the bounded, newest-first event log.
type EventRepository interface {
	Repository
	// Record stores a new event with a fresh ID, the current time and a
	// success status, evicting the oldest events beyond core.EventLogCapacity.
	Record(ctx context.Context, eventType core.EventType, message string) (*core.Event, error)

	// List returns the retained events, newest first.
	List(ctx context.Context) ([]*core.Event, error)

	// Count returns the number of retained events.
	Count(ctx context.Context) (int, error)
}
