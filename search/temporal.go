package search

import (
	"strings"
	"time"

	"github.com/keepsake-dev/keepsake/ai"
)

// RecencyWindow is the age at which a bypass result's recency score
// reaches zero. Items newer than this decay linearly from 1.
const RecencyWindow = 168 * time.Hour

// minSemanticRunes is the length below which a stripped semantic query
// carries no searchable meaning and the metadata filters stand alone.
const minSemanticRunes = 3

// isTemporalBypass reports whether the intent should skip relevance
// scoring entirely. That happens when the query is a pure metadata
// request: the classifier routed it as a filter and stripping the filter
// language left nothing worth embedding.
func isTemporalBypass(intent ai.Intent) bool {
	if intent.Kind != ai.IntentMetadataFilter {
		return false
	}
	stripped := strings.TrimSpace(intent.SemanticQuery)
	return len([]rune(stripped)) < minSemanticRunes
}

// recencyScore maps an item age onto [0,1]: 1 for brand new, falling
// linearly to 0 at RecencyWindow and staying there.
func recencyScore(createdAt, now time.Time) float32 {
	age := now.Sub(createdAt)
	if age <= 0 {
		return 1
	}
	if age >= RecencyWindow {
		return 0
	}
	return float32(1 - float64(age)/float64(RecencyWindow))
}
