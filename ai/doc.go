// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the language model services used by ShadowSync.
//
// Two interfaces cover every model interaction:
//
//   - Extractor: turns free text into entities, relationships, a 2D
//     coordinate and a summary
//   - Responder: answers a question against a context summary, always
//     returning displayable text
//
// AIProvider aggregates both behind one configuration.
//
// # Implementation Packages
//
//   - ai/gemini: Google Gemini through google.golang.org/genai, using a
//     JSON response schema
//   - ai/openai: OpenAI-compatible APIs through langchaingo, using JSON mode
//     with repair and retry
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Failing closed
//
// A provider built without an API key still constructs. Extract then
// returns ErrMissingCredential and Respond returns MissingCredentialReply, so
// callers never need a separate "disabled" code path.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithAPIKey(os.Getenv("API_KEY")))
//	provider, err := gemini.NewProvider(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	extraction, err := provider.Extractor().Extract(ctx, "Met Bob in Berlin")
//
//	// Testing usage with mocks
//	mockProvider := mock.NewMockProvider()
//	extraction, err := mockProvider.Extractor().Extract(ctx, "test text")
package ai
