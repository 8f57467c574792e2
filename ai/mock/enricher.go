package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/keepsake-dev/keepsake/ai"
)

// MockEnricher is a test double for ai.Enricher.
type MockEnricher struct {
	// EnrichFunc is called by Enrich if set.
	// If nil, derives a title from the first words of the text.
	EnrichFunc func(ctx context.Context, text string) (ai.Enrichment, error)

	mu        sync.Mutex
	callCount int
}

// NewMockEnricher creates a mock enricher with default behavior.
func NewMockEnricher() *MockEnricher {
	return &MockEnricher{}
}

// Enrich derives a deterministic enrichment from the text unless custom
// behavior has been injected.
func (m *MockEnricher) Enrich(ctx context.Context, text string) (ai.Enrichment, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EnrichFunc != nil {
		return m.EnrichFunc(ctx, text)
	}

	return ai.Enrichment{
		Title:   titleFromText(text),
		Tags:    []string{"mock", "test"},
		Summary: summaryFromText(text),
	}, nil
}

// CallCount returns the number of times Enrich was called.
func (m *MockEnricher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockEnricher) Reset() {
	m.mu.Lock()
	m.callCount = 0
	m.mu.Unlock()
	m.EnrichFunc = nil
}

// titleFromText builds a title from the first five words of the text.
func titleFromText(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "Untitled"
	}
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " ")
}

// summaryFromText truncates the text to a short summary.
func summaryFromText(text string) string {
	const maxLen = 120
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen])
}
