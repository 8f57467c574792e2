package mock

import (
	"context"
	"sync"

	"github.com/keepsake-dev/keepsake/ai"
)

// MockIntentClassifier is a test double for ai.IntentClassifier.
type MockIntentClassifier struct {
	// ClassifyIntentFunc is called by ClassifyIntent if set.
	// If nil, returns a plain semantic-search intent for the verbatim query.
	ClassifyIntentFunc func(ctx context.Context, query string) (ai.Intent, error)

	mu        sync.Mutex
	callCount int
}

// NewMockIntentClassifier creates a mock classifier with default behavior.
func NewMockIntentClassifier() *MockIntentClassifier {
	return &MockIntentClassifier{}
}

// ClassifyIntent returns a semantic-search intent for the query unless
// custom behavior has been injected.
func (m *MockIntentClassifier) ClassifyIntent(ctx context.Context, query string) (ai.Intent, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ClassifyIntentFunc != nil {
		return m.ClassifyIntentFunc(ctx, query)
	}

	return ai.Intent{
		Kind:          ai.IntentSemanticSearch,
		SemanticQuery: query,
	}, nil
}

// CallCount returns the number of times ClassifyIntent was called.
func (m *MockIntentClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockIntentClassifier) Reset() {
	m.mu.Lock()
	m.callCount = 0
	m.mu.Unlock()
	m.ClassifyIntentFunc = nil
}
