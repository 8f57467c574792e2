package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/keepsake-dev/keepsake/ai"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

// Retry budget for embedding calls. The embedding API is the flakiest
// dependency in the pipeline, so transient failures get a few attempts
// before the item is left unembedded for a later sweep.
const (
	embedMaxAttempts = 3
	embedBaseDelay   = 500 * time.Millisecond
)

// embeddingProcessor attaches content embeddings to an item's fragments.
type embeddingProcessor struct {
	fragments storage.FragmentRepository
	embedder  ai.Embedder
	logger    *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

func newEmbeddingProcessor(fragments storage.FragmentRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if fragments == nil {
		return nil, ErrFragmentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrAIProviderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		fragments: fragments,
		embedder:  embedder,
		logger:    logger.With("processor", "embeddings"),
	}, nil
}

// process embeds every fragment of each item in one batch per item.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	for _, id := range ids {
		fragments, err := ep.fragments.GetFragmentsByItem(ctx, id)
		if err != nil {
			ep.logger.Error("error retrieving fragments", "item", id, "err", err)
			return err
		}
		if len(fragments) == 0 {
			continue
		}

		texts := make([]string, len(fragments))
		for i, fragment := range fragments {
			texts[i] = fragment.Body
		}

		ep.logger.Debug("generating fragment embeddings", "item", id, "fragments", len(texts))
		var embeddings [][]float32
		err = RetryWithBackoff(ctx, func() error {
			var embedErr error
			embeddings, embedErr = ep.embedder.EmbedTexts(ctx, texts)
			return embedErr
		}, embedMaxAttempts, embedBaseDelay)
		if err != nil {
			ep.logger.Error("error generating embeddings", "item", id, "err", err)
			return err
		}

		if len(embeddings) != len(fragments) {
			return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(fragments), len(embeddings))
		}

		for i := range embeddings {
			fragments[i].Vector = embeddings[i]
		}

		if _, err := ep.fragments.UpdateFragments(ctx, fragments...); err != nil {
			return err
		}
	}

	return nil
}
