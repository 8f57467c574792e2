package connections

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

// ConnectionThreshold is the similarity a pair must strictly exceed to be
// recorded. A pair sitting exactly on the threshold is not connected.
const ConnectionThreshold = 0.75

// Discoverer finds and records high-similarity item pairs.
type Discoverer struct {
	items       storage.ItemRepository
	fragments   storage.FragmentRepository
	connections storage.ConnectionRepository
	logger      *slog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewDiscoverer creates a new connection discoverer.
func NewDiscoverer(
	items storage.ItemRepository,
	fragments storage.FragmentRepository,
	connections storage.ConnectionRepository,
	opts ...Option,
) (*Discoverer, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if fragments == nil {
		return nil, ErrFragmentRepositoryRequired
	}
	if connections == nil {
		return nil, ErrConnectionRepositoryRequired
	}

	d := &Discoverer{
		items:       items,
		fragments:   fragments,
		connections: connections,
		logger:      slog.Default().With("component", "connections"),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// DiscoverFor compares one item against the rest of the vault and
// records every pair above the threshold. Called after an item's
// fragments finish embedding. Returns the number of connections written.
func (d *Discoverer) DiscoverFor(ctx context.Context, itemID core.ID) (int, error) {
	target, err := d.meanVector(ctx, itemID)
	if err != nil {
		return 0, err
	}
	if target == nil {
		// Not embedded yet; discovery will run again after embedding
		d.logger.Debug("item has no embedded fragments, skipping discovery", "itemID", itemID)
		return 0, nil
	}

	ids, err := d.items.ListItemIDs(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, other := range ids {
		if other == itemID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}

		otherVec, err := d.meanVector(ctx, other)
		if err != nil {
			d.logger.Warn("failed to load fragments for item", "itemID", other, "err", err)
			continue
		}
		if otherVec == nil {
			continue
		}

		score := core.CosineSimilarity(target, otherVec)
		if !exceedsThreshold(score) {
			continue
		}

		a, b := core.CanonicalPair(itemID, other)
		if err := d.connections.UpsertConnections(ctx, &core.Connection{A: a, B: b, Score: score}); err != nil {
			return written, fmt.Errorf("recording connection (%d, %d): %w", a, b, err)
		}
		written++
	}

	d.logger.Info("incremental discovery complete", "itemID", itemID, "connections", written)
	return written, nil
}

// Sweep compares every pair of items in the vault and records all pairs
// above the threshold. Cancellation is honored between items.
func (d *Discoverer) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ids, err := d.items.ListItemIDs(ctx)
	if err != nil {
		return 0, err
	}

	// Cache mean vectors; each item is loaded once
	vectors := make(map[core.ID][]float32, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		vec, err := d.meanVector(ctx, id)
		if err != nil {
			d.logger.Warn("failed to load fragments for item", "itemID", id, "err", err)
			continue
		}
		if vec != nil {
			vectors[id] = vec
		}
	}

	written := 0
	for i := 0; i < len(ids); i++ {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		vecA, ok := vectors[ids[i]]
		if !ok {
			continue
		}
		for j := i + 1; j < len(ids); j++ {
			vecB, ok := vectors[ids[j]]
			if !ok {
				continue
			}

			score := core.CosineSimilarity(vecA, vecB)
			if !exceedsThreshold(score) {
				continue
			}

			conn := &core.Connection{A: ids[i], B: ids[j], Score: score}
			if err := d.connections.UpsertConnections(ctx, conn); err != nil {
				return written, fmt.Errorf("recording connection (%d, %d): %w", ids[i], ids[j], err)
			}
			written++
		}
	}

	d.logger.Info("full sweep complete", "items", len(ids), "connections", written)
	return written, nil
}

// Connections returns the items connected to the given item, strongest
// first. Endpoints whose item has since been deleted are skipped.
func (d *Discoverer) Connections(ctx context.Context, itemID core.ID) ([]*core.ConnectedItem, error) {
	conns, err := d.connections.GetConnectionsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	results := make([]*core.ConnectedItem, 0, len(conns))
	for _, conn := range conns {
		other := conn.A
		if other == itemID {
			other = conn.B
		}

		item, err := d.items.GetItem(ctx, other)
		if err != nil {
			d.logger.Warn("connected item missing, skipping", "itemID", other, "err", err)
			continue
		}
		results = append(results, &core.ConnectedItem{Item: item, Score: conn.Score})
	}
	return results, nil
}

// meanVector averages the embedded fragment vectors of an item.
// Returns nil when no fragment carries a vector yet.
func (d *Discoverer) meanVector(ctx context.Context, itemID core.ID) ([]float32, error) {
	fragments, err := d.fragments.GetFragmentsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(fragments))
	for _, f := range fragments {
		if len(f.Vector) > 0 {
			vectors = append(vectors, f.Vector)
		}
	}
	return core.MeanVector(vectors), nil
}

// exceedsThreshold applies the strict comparison in one place.
func exceedsThreshold(score float32) bool {
	return score > ConnectionThreshold
}
