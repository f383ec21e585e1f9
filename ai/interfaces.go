package ai

import "context"

// Extractor turns free text into structured knowledge.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// Extract analyzes text and returns the entities, relationships, 2D
	// semantic coordinate and summary it finds. The result is normalized.
	// Returns ErrMissingCredential when no API key is configured and a
	// wrapped error for remote or parse failures.
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// Responder answers free-text questions against a context summary.
// Implementations must be thread-safe for concurrent use.
type Responder interface {
	// Respond always returns displayable text. Failures are reported as
	// MissingCredentialReply, ErrorReply or EmptyReply instead of an error.
	Respond(ctx context.Context, query, contextSummary string) string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Extractor and Responder instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Extractor returns the knowledge extraction service.
	Extractor() Extractor

	// Responder returns the question answering service.
	Responder() Responder

	// CredentialMissing reports whether the provider was configured without
	// an API key. Every call fails closed in that state.
	CredentialMissing() bool

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
