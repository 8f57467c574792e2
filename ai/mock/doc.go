// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder,
// ai.IntentClassifier, ai.Enricher, ai.Merger, and ai.Provider for use in
// unit tests. The mocks allow tests to run without external AI service
// dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockClassifier := mock.NewMockIntentClassifier()
//	mockClassifier.ClassifyIntentFunc = func(ctx context.Context, query string) (ai.Intent, error) {
//	    return ai.Intent{}, ai.ErrSchema
//	}
//
//	// Check call counts
//	count := mockClassifier.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockIntentClassifier: Returns a plain semantic-search intent for the verbatim query
//   - MockEnricher: Derives a title from the first words and a fixed tag set
//   - MockMerger: Concatenates the input texts
//   - MockProvider: Aggregates all of the above
package mock
