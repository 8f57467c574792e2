package search

import (
	"context"

	"github.com/keepsake-dev/keepsake/core"
)

// Session boost parameters. Items whose metadata aligns with what the
// user has been looking at get a multiplicative lift: neutral at or
// below the floor similarity, rising linearly to the ceiling at perfect
// alignment. A multiplier never penalizes.
const (
	// SessionWindow is how many recent views define the session focus.
	SessionWindow = 5

	// SessionBoostFloor is the cosine similarity at which boosting starts.
	SessionBoostFloor = 0.4

	// SessionBoostCeiling is the multiplier at perfect similarity.
	SessionBoostCeiling = 1.20
)

// sessionVector computes the mean of the metadata vectors of the most
// recently viewed items. Returns nil when there is no usable history,
// in which case boosting is a no-op.
func (s *Searcher) sessionVector(ctx context.Context) []float32 {
	entries, err := s.sessions.RecentViews(ctx, SessionWindow)
	if err != nil {
		s.logger.Warn("failed to read session history", "err", err)
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	ids := make([]core.ID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ItemId)
	}

	items, err := s.items.GetItems(ctx, ids...)
	if err != nil {
		s.logger.Warn("failed to load session items", "err", err)
		return nil
	}

	vectors := make([][]float32, 0, len(items))
	for _, item := range items {
		if len(item.MetaVector) > 0 {
			vectors = append(vectors, item.MetaVector)
		}
	}
	return core.MeanVector(vectors)
}

// sessionMultiplier maps the similarity between the session vector and
// an item's metadata vector onto [1.0, SessionBoostCeiling].
func sessionMultiplier(sessionVec, metaVec []float32) float32 {
	if len(sessionVec) == 0 || len(metaVec) == 0 {
		return 1.0
	}

	similarity := core.CosineSimilarity(sessionVec, metaVec)
	if similarity <= SessionBoostFloor {
		return 1.0
	}
	if similarity >= 1.0 {
		return SessionBoostCeiling
	}

	span := float32(1.0 - SessionBoostFloor)
	return 1.0 + (similarity-SessionBoostFloor)/span*(SessionBoostCeiling-1.0)
}
