// Copyright 2026 Keepsake Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/keepsake-dev/keepsake/ai"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

// ConnectionDiscoverer finds items related to a newly embedded item.
// Discovery runs after fragment embedding so the new item has vectors
// to compare against.
type ConnectionDiscoverer interface {
	DiscoverFor(ctx context.Context, itemID core.ID) (int, error)
}

// Pipeline orchestrates ingestion: synchronous storage of the item and
// its fragments, then asynchronous embedding, enrichment, and
// connection discovery on worker pools.
type Pipeline struct {
	items          storage.ItemRepository
	fragments      storage.FragmentRepository
	embeddingPool  *ants.Pool
	enrichmentPool *ants.Pool
	embeddingProc  processor
	enrichmentProc processor
	discoverer     ConnectionDiscoverer
	chunkSize      int
	chunkOverlap   int
	pending        sync.WaitGroup
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		if p.enrichmentPool != nil {
			p.enrichmentPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		enrichmentPool, err := ants.NewPool(size)
		if err != nil {
			embeddingPool.Release()
			return err
		}

		p.embeddingPool = embeddingPool
		p.enrichmentPool = enrichmentPool
		return nil
	}
}

// WithChunking overrides the fragment window size and overlap.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}
		if overlap < 0 || overlap >= size {
			return fmt.Errorf("chunk overlap must be in [0,%d), got %d", size, overlap)
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithDiscoverer sets the connection discoverer invoked after each
// item's fragments are embedded. Without one, ingestion skips the
// discovery step.
func WithDiscoverer(d ConnectionDiscoverer) Option {
	return func(p *Pipeline) error {
		p.discoverer = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	items storage.ItemRepository,
	fragments storage.FragmentRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if fragments == nil {
		return nil, ErrFragmentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	logger := slog.Default()

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	enrichmentPool, err := ants.NewPool(poolSize)
	if err != nil {
		embeddingPool.Release()
		return nil, err
	}

	p := &Pipeline{
		items:          items,
		fragments:      fragments,
		embeddingPool:  embeddingPool,
		enrichmentPool: enrichmentPool,
		chunkSize:      DefaultChunkSize,
		chunkOverlap:   DefaultChunkOverlap,
		logger:         logger,
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Processors are created after options so they see the final logger
	embeddingProc, err := newEmbeddingProcessor(fragments, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	enrichmentProc, err := newEnrichmentProcessor(items, fragments, provider.Embedder(), provider.Enricher(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.embeddingProc = embeddingProc
	p.enrichmentProc = enrichmentProc

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	SourcePath string    // Origin of the content, if any
	Title      string    // Pre-set title; enrichment will not overwrite it
	ModifiedAt time.Time // Source modification time, if known
}

// Ingest stores text as a new item with its fragments and schedules the
// asynchronous stages. Returns the stored item immediately; embeddings,
// enrichment, and connections arrive later. If identical content was
// ingested before, the existing item is returned together with an error
// wrapping ErrDuplicate, and nothing is stored.
// Errors during async processing are logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, kind core.ItemKind, text string, opts *IngestOptions) (*core.Item, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if kind == 0 {
		kind = core.KindText
	}

	hash := core.HashContent(text)
	existing, err := p.items.GetItemByHash(ctx, hash)
	if err == nil {
		return existing, fmt.Errorf("%w: item %d", ErrDuplicate, existing.Id)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	item := &core.Item{
		SourcePath: opts.SourcePath,
		Kind:       kind,
		Hash:       hash,
		Title:      opts.Title,
		ModifiedAt: opts.ModifiedAt,
	}
	added, err := p.items.AddItems(ctx, item)
	if err != nil {
		return nil, err
	}
	item = added[0]

	chunks := ChunkText(text, p.chunkSize, p.chunkOverlap)
	fragments := make([]*core.Fragment, len(chunks))
	for i, chunk := range chunks {
		fragments[i] = &core.Fragment{
			ItemId: item.Id,
			Seq:    i,
			Body:   chunk,
		}
	}
	if _, err := p.fragments.AddFragments(ctx, fragments...); err != nil {
		return nil, err
	}

	p.logger.Info("item ingested", "item", item.Id, "kind", kind.String(), "fragments", len(fragments))

	id := item.Id

	p.pending.Add(2)
	p.embeddingPool.Submit(func() {
		defer p.pending.Done()
		if err := p.embeddingProc.process(context.Background(), id); err != nil {
			p.logger.Error("error processing embeddings", "item", id, "err", err)
			return
		}
		if p.discoverer == nil {
			return
		}
		if count, err := p.discoverer.DiscoverFor(context.Background(), id); err != nil {
			p.logger.Error("error discovering connections", "item", id, "err", err)
		} else if count > 0 {
			p.logger.Debug("connections discovered", "item", id, "count", count)
		}
	})

	p.enrichmentPool.Submit(func() {
		defer p.pending.Done()
		if err := p.enrichmentProc.process(context.Background(), id); err != nil {
			p.logger.Error("error processing enrichment", "item", id, "err", err)
		}
	})

	return item, nil
}

// Wait blocks until all scheduled asynchronous work has finished.
// Useful before shutdown so in-flight embeddings are not lost.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
	if p.enrichmentPool != nil {
		p.enrichmentPool.Release()
	}
}
