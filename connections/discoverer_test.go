package connections

import (
	"context"
	"testing"

	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDiscoverer(t *testing.T) (*Discoverer, *badger.MemoryStore) {
	t.Helper()

	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	d, err := NewDiscoverer(store.Items, store.Fragments, store.Connections)
	require.NoError(t, err)
	return d, store
}

func addEmbeddedItem(t *testing.T, store *badger.MemoryStore, vectors ...[]float32) *core.Item {
	t.Helper()
	ctx := context.Background()

	items, err := store.Items.AddItems(ctx, &core.Item{Kind: core.KindText})
	require.NoError(t, err)

	for seq, vec := range vectors {
		_, err := store.Fragments.AddFragments(ctx, &core.Fragment{
			ItemId: items[0].Id,
			Seq:    seq,
			Body:   "fragment body",
			Vector: vec,
		})
		require.NoError(t, err)
	}
	return items[0]
}

func TestExceedsThresholdIsStrict(t *testing.T) {
	assert.False(t, exceedsThreshold(0.75))
	assert.False(t, exceedsThreshold(0.7499))
	assert.True(t, exceedsThreshold(0.7500001))
}

func TestDiscoverForConnectsSimilarItems(t *testing.T) {
	d, store := newTestDiscoverer(t)
	ctx := context.Background()

	target := addEmbeddedItem(t, store, []float32{1, 0, 0, 0})
	similar := addEmbeddedItem(t, store, []float32{0.95, 0.3122499, 0, 0})
	addEmbeddedItem(t, store, []float32{0, 1, 0, 0}) // orthogonal

	written, err := d.DiscoverFor(ctx, target.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	// The connection is visible from both endpoints
	fromTarget, err := d.Connections(ctx, target.Id)
	require.NoError(t, err)
	require.Len(t, fromTarget, 1)
	assert.Equal(t, similar.Id, fromTarget[0].Item.Id)
	assert.Greater(t, fromTarget[0].Score, float32(ConnectionThreshold))

	fromSimilar, err := d.Connections(ctx, similar.Id)
	require.NoError(t, err)
	require.Len(t, fromSimilar, 1)
	assert.Equal(t, target.Id, fromSimilar[0].Item.Id)
}

func TestDiscoverForSkipsUnembedded(t *testing.T) {
	d, store := newTestDiscoverer(t)
	ctx := context.Background()

	// Fragment stored without a vector
	bare := addEmbeddedItem(t, store, nil)
	addEmbeddedItem(t, store, []float32{1, 0, 0, 0})

	written, err := d.DiscoverFor(ctx, bare.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
}

func TestSweepConnectsAllPairs(t *testing.T) {
	d, store := newTestDiscoverer(t)
	ctx := context.Background()

	// Three near-identical items and one outlier
	a := addEmbeddedItem(t, store, []float32{1, 0, 0, 0})
	b := addEmbeddedItem(t, store, []float32{0.99, 0.14106736, 0, 0})
	c := addEmbeddedItem(t, store, []float32{0.98, 0.19899748, 0, 0})
	outlier := addEmbeddedItem(t, store, []float32{0, 0, 1, 0})

	written, err := d.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	for _, id := range []core.ID{a.Id, b.Id, c.Id} {
		conns, err := d.Connections(ctx, id)
		require.NoError(t, err)
		assert.Len(t, conns, 2, "item %d should connect to the other two", id)
	}

	conns, err := d.Connections(ctx, outlier.Id)
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestSweepHonorsCancellation(t *testing.T) {
	d, _ := newTestDiscoverer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConnectionsSkipsDeletedPeer(t *testing.T) {
	d, store := newTestDiscoverer(t)
	ctx := context.Background()

	a := addEmbeddedItem(t, store, []float32{1, 0, 0, 0})
	b := addEmbeddedItem(t, store, []float32{1, 0.01, 0, 0})

	_, err := d.Sweep(ctx)
	require.NoError(t, err)

	// Delete one endpoint but leave the connection record behind
	require.NoError(t, store.Items.DeleteItems(ctx, b.Id))

	conns, err := d.Connections(ctx, a.Id)
	require.NoError(t, err)
	assert.Empty(t, conns)
}
