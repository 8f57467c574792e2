package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFallbackIntentIsDeterministic(t *testing.T) {
	a := FallbackIntent("archivos de hoy")
	b := FallbackIntent("archivos de hoy")
	assert.Equal(t, a, b)

	assert.Equal(t, IntentSemanticSearch, a.Kind)
	assert.Equal(t, "archivos de hoy", a.SemanticQuery)
	assert.True(t, a.Filters.Empty())
	assert.Empty(t, a.Expansions)
	assert.NoError(t, a.Validate())
}

func TestIntentValidate(t *testing.T) {
	t.Run("valid semantic search", func(t *testing.T) {
		intent := Intent{Kind: IntentSemanticSearch, SemanticQuery: "kittens", Expansions: []string{"cats", "felines"}}
		assert.NoError(t, intent.Validate())
	})

	t.Run("unknown kind", func(t *testing.T) {
		intent := Intent{Kind: "sql_injection"}
		assert.ErrorIs(t, intent.Validate(), ErrSchema)
	})

	t.Run("too many expansions", func(t *testing.T) {
		intent := Intent{
			Kind:       IntentSemanticSearch,
			Expansions: []string{"a", "b", "c", "d"},
		}
		assert.ErrorIs(t, intent.Validate(), ErrSchema)
	})
}

func TestFiltersEmpty(t *testing.T) {
	assert.True(t, Filters{}.Empty())
	assert.False(t, Filters{Kind: "image"}.Empty())
	assert.False(t, Filters{CreatedAfter: time.Now()}.Empty())
	assert.False(t, Filters{Tags: []string{"work"}}.Empty())
}
