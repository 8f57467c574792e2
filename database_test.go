package keepsake

import (
	"context"
	"strings"
	"testing"

	"github.com/keepsake-dev/keepsake/ai/mock"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) (*Database, *mock.MockProvider) {
	t.Helper()

	provider := mock.NewMockProvider()
	db, err := NewDatabase("", WithInMemory(), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, provider
}

// sameVector makes every embedding identical so any two items connect
// and any two small notes cluster.
func sameVector(provider *mock.MockProvider) {
	vector := []float32{1, 0, 0, 0}
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = vector
		}
		return vectors, nil
	}
}

func TestNewDatabaseInMemory(t *testing.T) {
	provider := mock.NewMockProvider()
	db, err := NewDatabase("", WithInMemory(), WithProvider(provider))
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestIngestAndSearch(t *testing.T) {
	db, _ := newTestDatabase(t)
	ctx := context.Background()

	item, err := db.Ingest(ctx, core.KindText, "gardening tips for tomato plants in raised beds", nil)
	require.NoError(t, err)
	db.WaitForProcessing()

	results, err := db.Search(ctx, "tomato gardening", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, item.Id, results[0].Item.Id)
	assert.NotEmpty(t, results[0].Snippet)
}

func TestRecordView(t *testing.T) {
	db, _ := newTestDatabase(t)
	ctx := context.Background()

	item, err := db.Ingest(ctx, core.KindText, "a note worth viewing", nil)
	require.NoError(t, err)
	db.WaitForProcessing()

	require.NoError(t, db.RecordView(ctx, item.Id))
	require.NoError(t, db.RecordView(ctx, item.Id))

	entries, err := db.SessionRepository().RecentViews(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, item.Id, entries[0].ItemId)
}

func TestConnectionsAfterIngest(t *testing.T) {
	db, provider := newTestDatabase(t)
	sameVector(provider)
	ctx := context.Background()

	a, err := db.Ingest(ctx, core.KindText, "first note about databases", nil)
	require.NoError(t, err)
	b, err := db.Ingest(ctx, core.KindText, "second note about databases", nil)
	require.NoError(t, err)
	db.WaitForProcessing()

	connected, err := db.Connections(ctx, a.Id)
	require.NoError(t, err)
	require.Len(t, connected, 1)
	assert.Equal(t, b.Id, connected[0].Item.Id)
	assert.InDelta(t, 1.0, float64(connected[0].Score), 1e-5)
}

func TestDiscoverConnectionsSweep(t *testing.T) {
	db, provider := newTestDatabase(t)
	sameVector(provider)
	ctx := context.Background()

	_, err := db.Ingest(ctx, core.KindText, "alpha note", nil)
	require.NoError(t, err)
	_, err = db.Ingest(ctx, core.KindText, "beta note", nil)
	require.NoError(t, err)
	_, err = db.Ingest(ctx, core.KindText, "gamma note", nil)
	require.NoError(t, err)
	db.WaitForProcessing()

	count, err := db.DiscoverConnections(ctx)
	require.NoError(t, err)
	// All three pairs, already-known pairs are upserts and still counted
	assert.Equal(t, 3, count)
}

func TestDeleteItemCascades(t *testing.T) {
	db, provider := newTestDatabase(t)
	sameVector(provider)
	ctx := context.Background()

	a, err := db.Ingest(ctx, core.KindText, "note that will be deleted", nil)
	require.NoError(t, err)
	b, err := db.Ingest(ctx, core.KindText, "note that will remain", nil)
	require.NoError(t, err)
	db.WaitForProcessing()

	require.NoError(t, db.DeleteItem(ctx, a.Id))

	_, err = db.GetItem(ctx, a.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	fragments, err := db.FragmentRepository().GetFragmentsByItem(ctx, a.Id)
	require.NoError(t, err)
	assert.Empty(t, fragments)

	connected, err := db.Connections(ctx, b.Id)
	require.NoError(t, err)
	assert.Empty(t, connected)
}

func TestConsolidateMergesSmallNotes(t *testing.T) {
	db, provider := newTestDatabase(t)
	sameVector(provider)
	ctx := context.Background()

	a, err := db.Ingest(ctx, core.KindText, "water the plants on monday", nil)
	require.NoError(t, err)
	b, err := db.Ingest(ctx, core.KindText, "remember to water plants weekly", nil)
	require.NoError(t, err)
	db.WaitForProcessing()

	merged, err := db.Consolidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, merged)
	db.WaitForProcessing()

	_, err = db.GetItem(ctx, a.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = db.GetItem(ctx, b.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	remaining, err := db.ListItems(ctx, storage.ItemFilter{Kind: core.KindText})
	require.NoError(t, err)
	require.Len(t, remaining, 1)

	fragments, err := db.FragmentRepository().GetFragmentsByItem(ctx, remaining[0].Id)
	require.NoError(t, err)
	require.NotEmpty(t, fragments)
	bodies := make([]string, len(fragments))
	for i, fragment := range fragments {
		bodies[i] = fragment.Body
	}
	body := strings.Join(bodies, "")
	assert.Contains(t, body, "water the plants on monday")
	assert.Contains(t, body, "remember to water plants weekly")
}

func TestIngestDuplicateSurfacesExisting(t *testing.T) {
	db, _ := newTestDatabase(t)
	ctx := context.Background()

	first, err := db.Ingest(ctx, core.KindText, "exactly the same text", nil)
	require.NoError(t, err)
	db.WaitForProcessing()

	second, err := db.Ingest(ctx, core.KindText, "exactly the same text", nil)
	assert.Error(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.Id, second.Id)
}
