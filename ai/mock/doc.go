// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Extractor, ai.Responder
// and ai.AIProvider for use in unit tests and for running the engine without
// an external model. The mocks allow tests to run without external AI service
// dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	extraction, err := mockProvider.Extractor().Extract(ctx, "Met Bob in Berlin")
//
//	// Custom behavior injection
//	extractor := mock.NewMockExtractor()
//	extractor.ExtractFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
//	    return nil, errors.New("offline")
//	}
//
//	// Check call counts
//	count := extractor.CallCount()
//
// # Default Behavior
//
//   - MockExtractor: capitalized words become entities, consecutive ones are
//     chained by "mentioned with" relationships, coordinates derive from a
//     text hash
//   - MockResponder: echoes the query and the size of the context summary
//   - MockProvider: aggregates both; never reports a missing credential
package mock
