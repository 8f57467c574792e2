package ingestion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/keepsake-dev/keepsake/ai"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

// enrichMaxRunes bounds how much item text is sent to the enrichment
// model. Titles and summaries stabilize well before this point.
const enrichMaxRunes = 12000

// enrichmentProcessor generates the title, tags, summary, and metadata
// embedding for an item.
type enrichmentProcessor struct {
	items     storage.ItemRepository
	fragments storage.FragmentRepository
	embedder  ai.Embedder
	enricher  ai.Enricher
	logger    *slog.Logger
}

var _ processor = (*enrichmentProcessor)(nil)

func newEnrichmentProcessor(
	items storage.ItemRepository,
	fragments storage.FragmentRepository,
	embedder ai.Embedder,
	enricher ai.Enricher,
	logger *slog.Logger,
) (processor, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if fragments == nil {
		return nil, ErrFragmentRepositoryRequired
	}
	if embedder == nil || enricher == nil {
		return nil, ErrAIProviderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &enrichmentProcessor{
		items:     items,
		fragments: fragments,
		embedder:  embedder,
		enricher:  enricher,
		logger:    logger.With("processor", "enrichment"),
	}, nil
}

func (ep *enrichmentProcessor) process(ctx context.Context, ids ...core.ID) error {
	for _, id := range ids {
		item, err := ep.items.GetItem(ctx, id)
		if err != nil {
			ep.logger.Error("error retrieving item", "item", id, "err", err)
			return err
		}

		fragments, err := ep.fragments.GetFragmentsByItem(ctx, id)
		if err != nil {
			return err
		}
		if len(fragments) == 0 {
			ep.logger.Warn("item has no fragments to enrich", "item", id)
			continue
		}

		bodies := make([]string, len(fragments))
		for i, fragment := range fragments {
			bodies[i] = fragment.Body
		}
		text := truncateRunes(strings.Join(bodies, "\n"), enrichMaxRunes)

		var enrichment ai.Enrichment
		err = RetryWithBackoff(ctx, func() error {
			var enrichErr error
			enrichment, enrichErr = ep.enricher.Enrich(ctx, text)
			return enrichErr
		}, embedMaxAttempts, embedBaseDelay)
		if err != nil {
			ep.logger.Error("error enriching item", "item", id, "err", err)
			return err
		}

		// A caller-supplied title wins over the generated one
		if item.Title == "" {
			item.Title = enrichment.Title
		}
		item.Tags = enrichment.Tags
		item.Summary = enrichment.Summary

		metaText := metadataText(item)
		vector, err := ep.embedder.EmbedText(ctx, metaText)
		if err != nil {
			ep.logger.Error("error embedding item metadata", "item", id, "err", err)
			return err
		}
		item.MetaVector = vector
		item.Enriched = true

		if _, err := ep.items.UpdateItems(ctx, item); err != nil {
			return err
		}
		ep.logger.Debug("item enriched", "item", id, "title", item.Title, "tags", len(item.Tags))
	}

	return nil
}

// metadataText is the text whose embedding becomes the item's metadata
// vector. It concatenates what enrichment produced.
func metadataText(item *core.Item) string {
	parts := make([]string, 0, 3)
	if item.Title != "" {
		parts = append(parts, item.Title)
	}
	if len(item.Tags) > 0 {
		parts = append(parts, strings.Join(item.Tags, " "))
	}
	if item.Summary != "" {
		parts = append(parts, item.Summary)
	}
	return strings.Join(parts, "\n")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
