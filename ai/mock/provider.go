package mock

import "github.com/poiesic/shadowsync/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock extractor and responder instances.
type MockProvider struct {
	extractor *MockExtractor
	responder *MockResponder
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface; use GetMockExtractor/GetMockResponder for
// assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		extractor: NewMockExtractor(),
		responder: NewMockResponder(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(extractor *MockExtractor, responder *MockResponder) ai.AIProvider {
	return &MockProvider{
		extractor: extractor,
		responder: responder,
	}
}

// Extractor returns the mock extractor.
func (p *MockProvider) Extractor() ai.Extractor {
	return p.extractor
}

// Responder returns the mock responder.
func (p *MockProvider) Responder() ai.Responder {
	return p.responder
}

// CredentialMissing always reports false; mocks need no key.
func (p *MockProvider) CredentialMissing() bool {
	return false
}

// Close is a no-op for mocks.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockExtractor returns the concrete mock extractor for test assertions.
func (p *MockProvider) GetMockExtractor() *MockExtractor {
	return p.extractor
}

// GetMockResponder returns the concrete mock responder for test assertions.
func (p *MockProvider) GetMockResponder() *MockResponder {
	return p.responder
}
