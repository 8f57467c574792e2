package mock

import (
	"github.com/keepsake-dev/keepsake/ai"
)

// MockProvider is a test double for ai.Provider.
// It aggregates mock implementations of all AI services.
type MockProvider struct {
	embedder   *MockEmbedder
	classifier *MockIntentClassifier
	enricher   *MockEnricher
	merger     *MockMerger
}

// NewMockProvider creates a provider with default mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:   NewMockEmbedder(),
		classifier: NewMockIntentClassifier(),
		enricher:   NewMockEnricher(),
		merger:     NewMockMerger(),
	}
}

// Embedder returns the mock embedder as the ai.Embedder interface.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// IntentClassifier returns the mock classifier as the ai.IntentClassifier interface.
func (p *MockProvider) IntentClassifier() ai.IntentClassifier {
	return p.classifier
}

// Enricher returns the mock enricher as the ai.Enricher interface.
func (p *MockProvider) Enricher() ai.Enricher {
	return p.enricher
}

// Merger returns the mock merger as the ai.Merger interface.
func (p *MockProvider) Merger() ai.Merger {
	return p.merger
}

// Close is a no-op for the mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockIntentClassifier returns the concrete mock for test assertions.
func (p *MockProvider) GetMockIntentClassifier() *MockIntentClassifier {
	return p.classifier
}

// GetMockEnricher returns the concrete mock for test assertions.
func (p *MockProvider) GetMockEnricher() *MockEnricher {
	return p.enricher
}

// GetMockMerger returns the concrete mock for test assertions.
func (p *MockProvider) GetMockMerger() *MockMerger {
	return p.merger
}

// Reset clears call counts and injected behavior on all mocks.
func (p *MockProvider) Reset() {
	p.embedder.Reset()
	p.classifier.Reset()
	p.enricher.Reset()
	p.merger.Reset()
}
