package openai

import (
	"testing"
	"time"

	"github.com/keepsake-dev/keepsake/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestToIntent(t *testing.T) {
	c := &IntentClassifier{now: func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }}

	t.Run("metadata filter with date", func(t *testing.T) {
		intent, err := c.toIntent("files from today", intentResponse{
			Filters:       intentFilters{CreatedAfter: strPtr("2026-03-14")},
			SemanticQuery: "",
			Intent:        "metadata_filter",
		})
		require.NoError(t, err)
		assert.Equal(t, ai.IntentMetadataFilter, intent.Kind)
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), intent.Filters.CreatedAfter)
		assert.Empty(t, intent.SemanticQuery)
	})

	t.Run("semantic search keeps original on over-stripped query", func(t *testing.T) {
		intent, err := c.toIntent("garbage collection", intentResponse{
			SemanticQuery: "g",
			Intent:        "semantic_search",
		})
		require.NoError(t, err)
		assert.Equal(t, "garbage collection", intent.SemanticQuery)
	})

	t.Run("excess synonyms truncated to limit", func(t *testing.T) {
		intent, err := c.toIntent("kittens", intentResponse{
			SemanticQuery:   "kittens",
			LexicalSynonyms: []string{"cats", "felines", "tabbies", "mousers"},
			Intent:          "semantic_search",
		})
		require.NoError(t, err)
		assert.Len(t, intent.Expansions, ai.MaxExpansions)
	})

	t.Run("unknown intent kind is a schema error", func(t *testing.T) {
		_, err := c.toIntent("anything", intentResponse{
			SemanticQuery: "anything",
			Intent:        "drop_table",
		})
		assert.ErrorIs(t, err, ai.ErrSchema)
	})

	t.Run("malformed date is a schema error", func(t *testing.T) {
		_, err := c.toIntent("files", intentResponse{
			Filters: intentFilters{CreatedAfter: strPtr("last tuesday")},
			Intent:  "metadata_filter",
		})
		assert.ErrorIs(t, err, ai.ErrSchema)
	})
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}

func TestRepairJSON(t *testing.T) {
	assert.Equal(t, `{"kind": "image"}`, repairJSON(`{kind": "image"}`))
	assert.Equal(t, `{"kind": "image"}`, repairJSON(`{"kind": "image"}`))
}
