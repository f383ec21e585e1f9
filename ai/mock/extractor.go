package mock

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/poiesic/shadowsync/ai"
)

// MockExtractor is a test double for ai.Extractor.
// It allows custom behavior injection via function fields and is safe for
// use from the ingestion worker goroutines.
type MockExtractor struct {
	// ExtractFunc is called by Extract if set.
	// If nil, uses default capitalized-word extraction.
	ExtractFunc func(ctx context.Context, text string) (*ai.Extraction, error)

	mu        sync.Mutex
	callCount int
	texts     []string
}

// NewMockExtractor creates a new mock extractor with default behavior.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// Extract returns the injected result or a deterministic default.
func (m *MockExtractor) Extract(ctx context.Context, text string) (*ai.Extraction, error) {
	m.mu.Lock()
	m.callCount++
	m.texts = append(m.texts, text)
	fn := m.ExtractFunc
	m.mu.Unlock()

	if fn != nil {
		result, err := fn(ctx, text)
		if result != nil {
			result.Normalize()
		}
		return result, err
	}

	return defaultExtraction(text), nil
}

// CallCount returns how many times Extract was called.
func (m *MockExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Texts returns the inputs seen so far, in call order.
func (m *MockExtractor) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Reset clears call history and injected behavior.
func (m *MockExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.texts = nil
	m.ExtractFunc = nil
}

func defaultExtraction(text string) *ai.Extraction {
	result := &ai.Extraction{Summary: text}

	var previous string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(text) {
		word = strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if word == "" || !unicode.IsUpper([]rune(word)[0]) || seen[word] {
			continue
		}
		seen[word] = true
		result.Entities = append(result.Entities, ai.ExtractedEntity{Name: word, Type: "Concept"})
		if previous != "" {
			result.Relationships = append(result.Relationships, ai.ExtractedRelationship{
				Source:   previous,
				Target:   word,
				Relation: "mentioned with",
			})
		}
		previous = word
	}

	x, y := deterministicCoordinate(text)
	result.Coordinate = &ai.Coordinate{X: x, Y: y}
	result.Normalize()
	return result
}

// deterministicCoordinate spreads texts over the [-100, 100] plane by hash.
func deterministicCoordinate(text string) (float64, float64) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	next := func() float64 {
		seed = seed*1664525 + 1013904223 // LCG constants
		return float64(seed%2001)/10.0 - 100.0
	}
	return next(), next()
}
