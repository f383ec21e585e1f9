package mock

import (
	"context"
	"fmt"
	"sync"
)

// MockResponder is a test double for ai.Responder.
type MockResponder struct {
	// RespondFunc is called by Respond if set.
	RespondFunc func(ctx context.Context, query, contextSummary string) string

	mu          sync.Mutex
	callCount   int
	lastSummary string
}

// NewMockResponder creates a new mock responder with default behavior.
func NewMockResponder() *MockResponder {
	return &MockResponder{}
}

// Respond returns the injected reply or an echo of the query.
func (m *MockResponder) Respond(ctx context.Context, query, contextSummary string) string {
	m.mu.Lock()
	m.callCount++
	m.lastSummary = contextSummary
	fn := m.RespondFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, contextSummary)
	}
	return fmt.Sprintf("Recalled %d bytes of context for: %s", len(contextSummary), query)
}

// CallCount returns how many times Respond was called.
func (m *MockResponder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastSummary returns the context summary passed to the latest call.
func (m *MockResponder) LastSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSummary
}

// Reset clears call history and injected behavior.
func (m *MockResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastSummary = ""
	m.RespondFunc = nil
}
