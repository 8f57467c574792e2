package search

import (
	"github.com/keepsake-dev/keepsake/ai"
	"github.com/keepsake-dev/keepsake/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterIntent(intent ai.Intent)
	TemporalBypass(itemCount int)
	AfterContentSearch(ids []uint64)
	AfterMetadataSearch(ids []uint64)
	AfterLexicalSearch(ids []uint64)
	SessionBoost(itemID uint64, multiplier float32)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                   {}
func (n *noopMonitor) AfterIntent(_ ai.Intent)          {}
func (n *noopMonitor) TemporalBypass(_ int)             {}
func (n *noopMonitor) AfterContentSearch(_ []uint64)    {}
func (n *noopMonitor) AfterMetadataSearch(_ []uint64)   {}
func (n *noopMonitor) AfterLexicalSearch(_ []uint64)    {}
func (n *noopMonitor) SessionBoost(_ uint64, _ float32) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)    {}
