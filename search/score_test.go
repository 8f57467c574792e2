package search

import (
	"strings"
	"testing"
	"time"

	"github.com/keepsake-dev/keepsake/core"
	"github.com/stretchr/testify/assert"
)

func TestShortDocFactorBoundary(t *testing.T) {
	short := strings.Repeat("a", ShortDocLength-1)
	exact := strings.Repeat("a", ShortDocLength)

	assert.Equal(t, ShortDocPenalty, shortDocFactor(short))
	assert.Equal(t, float32(1.0), shortDocFactor(exact))
}

func TestShortDocFactorCountsRunes(t *testing.T) {
	// Multibyte runes count as one character each
	body := strings.Repeat("ñ", ShortDocLength)
	assert.Equal(t, float32(1.0), shortDocFactor(body))
}

func TestSemanticBase(t *testing.T) {
	t.Run("blends content and metadata", func(t *testing.T) {
		c := &candidate{contentScore: 0.8, metaScore: 0.5, hasMeta: true}
		assert.InDelta(t, 0.7*0.8+0.3*0.5, float64(c.semanticBase()), 0.0001)
	})

	t.Run("content stands alone without metadata", func(t *testing.T) {
		c := &candidate{contentScore: 0.8}
		assert.Equal(t, float32(0.8), c.semanticBase())
	})
}

func TestNormalizeLexical(t *testing.T) {
	candidates := map[core.ID]*candidate{
		1: {lexicalScore: 4.0},
		2: {lexicalScore: 2.0},
		3: {lexicalScore: 0},
	}
	normalizeLexical(candidates)

	assert.Equal(t, float32(1.0), candidates[1].lexicalScore)
	assert.Equal(t, float32(0.5), candidates[2].lexicalScore)
	assert.Equal(t, float32(0), candidates[3].lexicalScore)
}

func TestNormalizeLexicalNoHits(t *testing.T) {
	candidates := map[core.ID]*candidate{
		1: {lexicalScore: 0},
	}
	normalizeLexical(candidates)
	assert.Equal(t, float32(0), candidates[1].lexicalScore)
}

func TestSortResultsOrdering(t *testing.T) {
	now := time.Now().UTC()
	results := []*core.SearchResult{
		{Item: &core.Item{Id: 3, CreatedAt: now}, Score: 0.5},
		{Item: &core.Item{Id: 1, CreatedAt: now}, Score: 0.5},
		{Item: &core.Item{Id: 2, CreatedAt: now.Add(time.Hour)}, Score: 0.5},
		{Item: &core.Item{Id: 4, CreatedAt: now}, Score: 0.9},
	}

	sortResults(results)

	// Score first, then CreatedAt descending, then ID ascending
	assert.Equal(t, core.ID(4), results[0].Item.Id)
	assert.Equal(t, core.ID(2), results[1].Item.Id)
	assert.Equal(t, core.ID(1), results[2].Item.Id)
	assert.Equal(t, core.ID(3), results[3].Item.Id)
}
