package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/keepsake-dev/keepsake/ai"
	"github.com/keepsake-dev/keepsake/ai/mock"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testVault bundles the in-memory store, mock provider, and searcher.
type testVault struct {
	store    *badger.MemoryStore
	provider *mock.MockProvider
	searcher *Searcher
}

func newTestVault(t *testing.T, opts ...Option) *testVault {
	t.Helper()

	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	provider := mock.NewMockProvider()
	searcher, err := NewSearcher(store.Items, store.Sessions, store.Backend, provider, opts...)
	require.NoError(t, err)

	return &testVault{store: store, provider: provider, searcher: searcher}
}

// addItem stores an item with one fragment carrying the given vector.
func (v *testVault) addItem(t *testing.T, body string, vector, metaVector []float32, createdAt time.Time) *core.Item {
	t.Helper()
	ctx := context.Background()

	items, err := v.store.Items.AddItems(ctx, &core.Item{
		Kind:       core.KindText,
		Hash:       core.HashContent(body),
		MetaVector: metaVector,
		CreatedAt:  createdAt,
		Enriched:   len(metaVector) > 0,
	})
	require.NoError(t, err)

	_, err = v.store.Fragments.AddFragments(ctx, &core.Fragment{
		ItemId: items[0].Id,
		Seq:    0,
		Body:   body,
		Vector: vector,
	})
	require.NoError(t, err)

	return items[0]
}

// semanticIntent makes the mock classifier return a fixed semantic intent.
func (v *testVault) semanticIntent(query string, expansions ...string) {
	v.provider.GetMockIntentClassifier().ClassifyIntentFunc = func(ctx context.Context, q string) (ai.Intent, error) {
		return ai.Intent{
			Kind:          ai.IntentSemanticSearch,
			SemanticQuery: query,
			Expansions:    expansions,
		}, nil
	}
}

// fixedEmbedding makes the mock embedder return a fixed query vector.
func (v *testVault) fixedEmbedding(vector []float32) {
	v.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
}

func TestNewSearcher(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(store.Items, store.Sessions, store.Backend, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(store.Items, store.Sessions, store.Backend, provider, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil item repository", func(t *testing.T) {
		_, err := NewSearcher(nil, store.Sessions, store.Backend, provider)
		assert.Equal(t, ErrItemRepositoryRequired, err)
	})

	t.Run("nil session repository", func(t *testing.T) {
		_, err := NewSearcher(store.Items, nil, store.Backend, provider)
		assert.Equal(t, ErrSessionRepositoryRequired, err)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewSearcher(store.Items, store.Sessions, nil, provider)
		assert.Equal(t, ErrIndexRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(store.Items, store.Sessions, store.Backend, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestSearchEmptyQuery(t *testing.T) {
	v := newTestVault(t)
	_, err := v.searcher.Search(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchEmptyVault(t *testing.T) {
	v := newTestVault(t)
	results, err := v.searcher.Search(context.Background(), "anything at all", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchScoresNonIncreasingAboveThreshold(t *testing.T) {
	v := newTestVault(t)
	now := time.Now().UTC()

	v.semanticIntent("memory management")
	v.fixedEmbedding([]float32{1, 0, 0, 0})

	v.addItem(t, "garbage collection and memory management in long running services", []float32{1, 0, 0, 0}, nil, now)
	v.addItem(t, "memory profiling notes from the incident review last week or so", []float32{0.8, 0.6, 0, 0}, nil, now)
	v.addItem(t, "completely unrelated recipe for sourdough bread with rye flour mix", []float32{0, 1, 0, 0}, nil, now)

	results, err := v.searcher.Search(context.Background(), "memory management", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for i, r := range results {
		assert.GreaterOrEqual(t, r.Score, float32(ScoreThreshold), "result %d below threshold", i)
		if i > 0 {
			assert.LessOrEqual(t, r.Score, results[i-1].Score, "scores must be non-increasing")
		}
	}

	// The orthogonal item matches neither source and is absent
	for _, r := range results {
		assert.NotContains(t, r.Snippet, "sourdough")
	}
}

func TestTemporalBypassSkipsScoring(t *testing.T) {
	v := newTestVault(t)
	now := time.Now().UTC()

	// Pure metadata query: filter intent with nothing left to embed
	v.provider.GetMockIntentClassifier().ClassifyIntentFunc = func(ctx context.Context, q string) (ai.Intent, error) {
		return ai.Intent{Kind: ai.IntentMetadataFilter}, nil
	}

	fresh := v.addItem(t, "created just now", []float32{1, 0, 0, 0}, nil, now)
	stale := v.addItem(t, "created long ago", []float32{1, 0, 0, 0}, nil, now.Add(-400*time.Hour))

	results, err := v.searcher.Search(context.Background(), "archivos de hoy", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Newest first, recency-scored
	assert.Equal(t, fresh.Id, results[0].Item.Id)
	assert.InDelta(t, 1.0, float64(results[0].Score), 0.01)
	assert.Equal(t, stale.Id, results[1].Item.Id)
	assert.Equal(t, float32(0), results[1].Score)

	// The scorer never ran
	assert.Equal(t, 0, v.provider.GetMockEmbedder().CallCount())
}

func TestTemporalBypassAppliesFilters(t *testing.T) {
	v := newTestVault(t)
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	v.provider.GetMockIntentClassifier().ClassifyIntentFunc = func(ctx context.Context, q string) (ai.Intent, error) {
		return ai.Intent{
			Kind:    ai.IntentMetadataFilter,
			Filters: ai.Filters{Kind: "text", CreatedAfter: today},
		}, nil
	}

	wanted := v.addItem(t, "note from today", nil, nil, now)
	v.addItem(t, "note from yesterday", nil, nil, today.Add(-2*time.Hour))

	results, err := v.searcher.Search(context.Background(), "files from today", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, wanted.Id, results[0].Item.Id)
}

func TestClassifierFailureFallsBack(t *testing.T) {
	v := newTestVault(t)
	now := time.Now().UTC()

	v.provider.GetMockIntentClassifier().ClassifyIntentFunc = func(ctx context.Context, q string) (ai.Intent, error) {
		return ai.Intent{}, errors.New("model unavailable")
	}

	var embedded string
	v.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		embedded = text
		return []float32{1, 0, 0, 0}, nil
	}

	v.addItem(t, "the verbatim query still finds this note about goroutine leaks", []float32{1, 0, 0, 0}, nil, now)

	results, err := v.searcher.Search(context.Background(), "goroutine leaks", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Fallback embeds the raw query, untouched
	assert.Equal(t, "goroutine leaks", embedded)
}

func TestDeterministicTieBreak(t *testing.T) {
	v := newTestVault(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	v.semanticIntent("identical")
	v.fixedEmbedding([]float32{1, 0, 0, 0})

	body := "two items carrying exactly the same fragment text and the same vector"
	older := v.addItem(t, body, []float32{1, 0, 0, 0}, nil, now.Add(-time.Hour))
	newer := v.addItem(t, body+" ", []float32{1, 0, 0, 0}, nil, now)

	results, err := v.searcher.Search(context.Background(), "identical", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Equal scores break toward the newer item
	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, newer.Id, results[0].Item.Id)
	assert.Equal(t, older.Id, results[1].Item.Id)
}

func TestExpansionsWidenLexicalOnly(t *testing.T) {
	v := newTestVault(t)
	now := time.Now().UTC()

	v.semanticIntent("kittens", "felines")

	var embedded []string
	v.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		embedded = append(embedded, text)
		return []float32{1, 0, 0, 0}, nil
	}

	// Orthogonal vector: reachable only through the expansion term
	v.addItem(t,
		"felines sleep for most of the day and hunt in the early hours before dawn breaks",
		[]float32{0, 1, 0, 0}, nil, now)

	results, err := v.searcher.Search(context.Background(), "kittens", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Lexical-only hit: top lexical score normalized to 1, weighted
	assert.InDelta(t, float64(LexicalWeight), float64(results[0].Score), 0.001)

	// The vector query saw only the semantic text, never the expansions
	require.Len(t, embedded, 1)
	assert.Equal(t, "kittens", embedded[0])
}

func TestSessionBoostAffectsRanking(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()
	now := time.Now().UTC()

	v.semanticIntent("deployment checklist")
	v.fixedEmbedding([]float32{1, 0, 0, 0})

	// Both candidates tie on content; only one aligns with the session
	aligned := v.addItem(t, "deployment checklist for the payments service rollout next week",
		[]float32{1, 0, 0, 0}, []float32{0, 1, 0, 0}, now)
	drifting := v.addItem(t, "deployment checklist template copied from the platform wiki page",
		[]float32{1, 0, 0, 0}, []float32{0, 0, 1, 0}, now)

	// Recently viewed item defines the session focus
	viewed := v.addItem(t, "payments service oncall handbook", []float32{0, 0, 0, 1}, []float32{0, 1, 0, 0}, now)
	_, err := v.store.Sessions.AppendView(ctx, viewed.Id)
	require.NoError(t, err)

	results, err := v.searcher.Search(ctx, "deployment checklist", 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 2)

	var alignedScore, driftingScore float32
	for _, r := range results {
		switch r.Item.Id {
		case aligned.Id:
			alignedScore = r.Score
		case drifting.Id:
			driftingScore = r.Score
		}
	}
	assert.Greater(t, alignedScore, driftingScore, "session-aligned item must rank higher")
}

func TestMetadataBlendRewardsEnrichedItems(t *testing.T) {
	v := newTestVault(t)
	now := time.Now().UTC()

	v.semanticIntent("quarterly planning")
	v.fixedEmbedding([]float32{1, 0, 0, 0})

	// Same content similarity; one item's metadata also matches the query
	enriched := v.addItem(t, "quarterly planning notes with goals and staffing for the data team",
		[]float32{0.9, 0.1, 0, 0}, []float32{1, 0, 0, 0}, now)
	plain := v.addItem(t, "quarterly planning notes with goals and staffing for the infra team",
		[]float32{0.9, 0.1, 0, 0}, nil, now)

	results, err := v.searcher.Search(context.Background(), "quarterly planning", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	var enrichedScore, plainScore float32
	for _, r := range results {
		switch r.Item.Id {
		case enriched.Id:
			enrichedScore = r.Score
		case plain.Id:
			plainScore = r.Score
		}
	}
	assert.Greater(t, enrichedScore, plainScore)
}

func TestSearchMonitorHooks(t *testing.T) {
	v := newTestVault(t)
	now := time.Now().UTC()

	v.semanticIntent("notes")
	v.fixedEmbedding([]float32{1, 0, 0, 0})
	v.addItem(t, "notes about the search monitor callbacks firing in order", []float32{1, 0, 0, 0}, nil, now)

	m := &recordingMonitor{}
	results, err := v.searcher.SearchWithMonitor(context.Background(), "notes", 10, m)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.True(t, m.started)
	assert.True(t, m.gotIntent)
	assert.NotEmpty(t, m.contentIds)
	assert.True(t, m.finished)
}

type recordingMonitor struct {
	started    bool
	gotIntent  bool
	contentIds []uint64
	finished   bool
}

func (m *recordingMonitor) Start(_ string)                   { m.started = true }
func (m *recordingMonitor) AfterIntent(_ ai.Intent)          { m.gotIntent = true }
func (m *recordingMonitor) TemporalBypass(_ int)             {}
func (m *recordingMonitor) AfterContentSearch(ids []uint64)  { m.contentIds = ids }
func (m *recordingMonitor) AfterMetadataSearch(_ []uint64)   {}
func (m *recordingMonitor) AfterLexicalSearch(_ []uint64)    {}
func (m *recordingMonitor) SessionBoost(_ uint64, _ float32) {}
func (m *recordingMonitor) Finish(_ []*core.SearchResult)    { m.finished = true }
