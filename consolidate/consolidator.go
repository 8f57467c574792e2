package consolidate

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/keepsake-dev/keepsake/ai"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

const (
	// SmallDocLimit is the maximum total fragment length, in characters,
	// for an item to be considered for consolidation.
	SmallDocLimit = 300

	// ClusterThreshold is the minimum pairwise similarity for two small
	// notes to land in the same cluster. Inclusive.
	ClusterThreshold = 0.70
)

// Vault is the slice of the database the consolidator needs: re-ingest a
// merged document and delete a source item with its dependents.
type Vault interface {
	IngestMerged(ctx context.Context, title, body string) (*core.Item, error)
	DeleteItem(ctx context.Context, id core.ID) error
}

// Consolidator finds clusters of small similar text notes and merges
// each cluster into a single document.
type Consolidator struct {
	items     storage.ItemRepository
	fragments storage.FragmentRepository
	merger    ai.Merger
	vault     Vault
	logger    *slog.Logger
}

// Option configures a Consolidator.
type Option func(*Consolidator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Consolidator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewConsolidator creates a new consolidator.
func NewConsolidator(
	items storage.ItemRepository,
	fragments storage.FragmentRepository,
	merger ai.Merger,
	vault Vault,
	opts ...Option,
) (*Consolidator, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if fragments == nil {
		return nil, ErrFragmentRepositoryRequired
	}
	if merger == nil {
		return nil, ErrMergerRequired
	}
	if vault == nil {
		return nil, ErrVaultRequired
	}

	c := &Consolidator{
		items:     items,
		fragments: fragments,
		merger:    merger,
		vault:     vault,
		logger:    slog.Default().With("component", "consolidate"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// smallNote is one consolidation candidate with its text and mean vector.
type smallNote struct {
	item   *core.Item
	text   string
	vector []float32
}

// Run performs one consolidation pass. Returns the number of clusters
// merged. Cancellation is honored between clusters; a cluster that has
// started merging is carried through to deletion of its sources.
func (c *Consolidator) Run(ctx context.Context) (int, error) {
	notes, err := c.collectSmallNotes(ctx)
	if err != nil {
		return 0, err
	}
	if len(notes) < 2 {
		c.logger.Info("nothing to consolidate", "candidates", len(notes))
		return 0, nil
	}

	// Transitive clustering: a pair anywhere in the set pulls both sides
	// into the same cluster, regardless of comparison order
	uf := newUnionFind(len(notes))
	for i := 0; i < len(notes); i++ {
		for j := i + 1; j < len(notes); j++ {
			similarity := core.CosineSimilarity(notes[i].vector, notes[j].vector)
			if similarity >= ClusterThreshold {
				uf.union(i, j)
			}
		}
	}

	merged := 0
	for _, cluster := range uf.clusters() {
		if len(cluster) < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return merged, err
		}

		if c.mergeCluster(ctx, notes, cluster) {
			merged++
		}
	}

	c.logger.Info("consolidation pass complete", "candidates", len(notes), "merged", merged)
	return merged, nil
}

// mergeCluster merges one cluster. Any failure before deletion leaves
// every source item in place; the error is logged and the run goes on.
func (c *Consolidator) mergeCluster(ctx context.Context, notes []*smallNote, cluster []int) bool {
	texts := make([]string, len(cluster))
	ids := make([]core.ID, len(cluster))
	for i, idx := range cluster {
		texts[i] = notes[idx].text
		ids[i] = notes[idx].item.Id
	}

	result, err := c.merger.Merge(ctx, texts)
	if err != nil {
		c.logger.Error("merge failed, cluster left untouched", "items", ids, "err", err)
		return false
	}

	newItem, err := c.vault.IngestMerged(ctx, result.Title, result.Body)
	if err != nil {
		c.logger.Error("ingesting merged document failed, cluster left untouched", "items", ids, "err", err)
		return false
	}

	for _, id := range ids {
		if err := c.vault.DeleteItem(ctx, id); err != nil {
			c.logger.Error("failed to delete consolidated source", "itemID", id, "err", err)
		}
	}

	c.logger.Info("cluster consolidated", "sources", ids, "merged", newItem.Id)
	return true
}

// collectSmallNotes gathers embedded text items within the size limit.
func (c *Consolidator) collectSmallNotes(ctx context.Context) ([]*smallNote, error) {
	items, err := c.items.FilterItems(ctx, storage.ItemFilter{Kind: core.KindText})
	if err != nil {
		return nil, err
	}

	var notes []*smallNote
	for _, item := range items {
		fragments, err := c.fragments.GetFragmentsByItem(ctx, item.Id)
		if err != nil {
			c.logger.Warn("failed to load fragments", "itemID", item.Id, "err", err)
			continue
		}
		if len(fragments) == 0 {
			continue
		}

		length := 0
		bodies := make([]string, 0, len(fragments))
		vectors := make([][]float32, 0, len(fragments))
		for _, f := range fragments {
			length += utf8.RuneCountInString(f.Body)
			bodies = append(bodies, f.Body)
			if len(f.Vector) > 0 {
				vectors = append(vectors, f.Vector)
			}
		}
		if length > SmallDocLimit {
			continue
		}

		vector := core.MeanVector(vectors)
		if vector == nil {
			// Not embedded yet; it can join the next pass
			continue
		}

		notes = append(notes, &smallNote{
			item:   item,
			text:   strings.Join(bodies, "\n"),
			vector: vector,
		})
	}
	return notes, nil
}
