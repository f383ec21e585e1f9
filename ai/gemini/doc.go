// Package gemini implements ai.AIProvider on Google Gemini through the
// google.golang.org/genai SDK.
//
// Extraction sends a JSON response schema so the model answers with a
// parseable object; queries run with a fixed system instruction describing
// the agent persona.
//
//	provider, err := gemini.NewProvider(ctx, ai.NewConfig(ai.WithAPIKey(key)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
package gemini
