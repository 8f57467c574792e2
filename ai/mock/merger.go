package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/keepsake-dev/keepsake/ai"
)

// MockMerger is a test double for ai.Merger.
type MockMerger struct {
	// MergeFunc is called by Merge if set.
	// If nil, concatenates the input texts.
	MergeFunc func(ctx context.Context, texts []string) (ai.Merged, error)

	mu        sync.Mutex
	callCount int
}

// NewMockMerger creates a mock merger with default behavior.
func NewMockMerger() *MockMerger {
	return &MockMerger{}
}

// Merge concatenates the input texts unless custom behavior has been injected.
func (m *MockMerger) Merge(ctx context.Context, texts []string) (ai.Merged, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.MergeFunc != nil {
		return m.MergeFunc(ctx, texts)
	}

	if len(texts) == 0 {
		return ai.Merged{}, ai.ErrEmptyInput
	}

	return ai.Merged{
		Title: titleFromText(texts[0]),
		Body:  strings.Join(texts, "\n\n"),
	}, nil
}

// CallCount returns the number of times Merge was called.
func (m *MockMerger) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockMerger) Reset() {
	m.mu.Lock()
	m.callCount = 0
	m.mu.Unlock()
	m.MergeFunc = nil
}
