package search

import (
	"slices"
	"unicode/utf8"

	"github.com/keepsake-dev/keepsake/core"
)

// Fusion and blending weights. The semantic base blends fragment content
// similarity with item metadata similarity; the final score blends the
// boosted semantic score with the normalized lexical score.
const (
	// ContentWeight is the share of the semantic base taken by the best
	// fragment content similarity.
	ContentWeight = 0.7

	// MetadataWeight is the share of the semantic base taken by the item
	// metadata similarity. Applied only when the item carries a metadata
	// vector; otherwise the content similarity stands alone.
	MetadataWeight = 0.3

	// SemanticWeight is the share of the final score taken by the
	// boosted semantic base.
	SemanticWeight = 0.6

	// LexicalWeight is the share of the final score taken by the
	// normalized lexical score.
	LexicalWeight = 0.4

	// ScoreThreshold is the floor below which results are dropped.
	ScoreThreshold = 0.1
)

// Short-fragment lexical penalty. Fragments shorter than ShortDocLength
// runes tend to win BM25 on length normalization alone, so their lexical
// score is damped. Both values are tunable.
var (
	ShortDocLength  = 80
	ShortDocPenalty = float32(0.75)
)

// candidate accumulates the per-item signals before fusion.
type candidate struct {
	item         *core.Item
	contentScore float32
	metaScore    float32
	hasMeta      bool
	lexicalScore float32
	bestSemantic string // body of the best content fragment
	bestLexical  string // body of the best lexical fragment
	boostedBase  float32
	finalScore   float32
}

// semanticBase blends the content and metadata similarities.
// Items without a metadata vector are scored on content alone.
func (c *candidate) semanticBase() float32 {
	if !c.hasMeta {
		return c.contentScore
	}
	return ContentWeight*c.contentScore + MetadataWeight*c.metaScore
}

// shortDocFactor dampens the lexical score of very short fragments.
func shortDocFactor(body string) float32 {
	if utf8.RuneCountInString(body) < ShortDocLength {
		return ShortDocPenalty
	}
	return 1.0
}

// normalizeLexical maps raw BM25 scores to [0,1] relative to the top
// lexical score in the candidate set. With no lexical hits every
// candidate keeps a zero lexical contribution.
func normalizeLexical(candidates map[core.ID]*candidate) {
	var max float32
	for _, c := range candidates {
		if c.lexicalScore > max {
			max = c.lexicalScore
		}
	}
	if max <= 0 {
		return
	}
	for _, c := range candidates {
		c.lexicalScore /= max
	}
}

// sortResults orders results by score descending, breaking ties by
// creation time descending and then by ID ascending, so a fixed store
// state always yields the same ordering.
func sortResults(results []*core.SearchResult) {
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if !a.Item.CreatedAt.Equal(b.Item.CreatedAt) {
			if a.Item.CreatedAt.After(b.Item.CreatedAt) {
				return -1
			}
			return 1
		}
		if a.Item.Id < b.Item.Id {
			return -1
		}
		if a.Item.Id > b.Item.Id {
			return 1
		}
		return 0
	})
}
