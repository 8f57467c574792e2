package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error wrapping ErrTransient on timeout or network failure.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// IntentClassifier turns a raw query string into a structured Intent.
// Implementations must be thread-safe for concurrent use.
type IntentClassifier interface {
	// ClassifyIntent parses a natural-language query into filters, a
	// cleaned semantic query, and lexical expansion terms.
	// Returns an error wrapping ErrTransient on timeout or network
	// failure, or ErrSchema when the model output fails validation.
	// Callers that must never fail use FallbackIntent instead.
	ClassifyIntent(ctx context.Context, query string) (Intent, error)
}

// Enricher generates a title, tags, and summary for item text.
// Implementations must be thread-safe for concurrent use.
type Enricher interface {
	// Enrich analyzes text and returns descriptive metadata for it.
	// Returns an error wrapping ErrTransient or ErrSchema on failure.
	Enrich(ctx context.Context, text string) (Enrichment, error)
}

// Merger consolidates several related texts into one coherent document.
// Implementations must be thread-safe for concurrent use.
type Merger interface {
	// Merge combines the given texts, removing redundancy, and returns
	// a title plus the consolidated body.
	// Returns an error wrapping ErrTransient or ErrSchema on failure.
	Merge(ctx context.Context, texts []string) (Merged, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the service instances, ensuring they share
// configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// IntentClassifier returns the query intent classification service.
	IntentClassifier() IntentClassifier

	// Enricher returns the item enrichment service.
	Enricher() Enricher

	// Merger returns the fragment consolidation service.
	Merger() Merger

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
