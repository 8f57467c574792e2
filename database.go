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


// Package keepsake is a personal knowledge vault: ingested text is
// chunked, embedded, enriched, and searched with a blend of semantic,
// metadata, and lexical relevance.
package keepsake

import (
	"context"
	"log/slog"

	"github.com/keepsake-dev/keepsake/ai"
	"github.com/keepsake-dev/keepsake/ai/openai"
	"github.com/keepsake-dev/keepsake/connections"
	"github.com/keepsake-dev/keepsake/consolidate"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/ingestion"
	"github.com/keepsake-dev/keepsake/search"
	"github.com/keepsake-dev/keepsake/storage"
	"github.com/keepsake-dev/keepsake/storage/badger"
)

// sessionLogKeep is how many view entries survive pruning. Only the five
// most recent feed the ranking boost; the rest is slack for diagnostics.
const sessionLogKeep = 50

// Database is the top-level handle to a vault. It owns the storage
// backend, the AI provider, and the processing components built on them.
type Database struct {
	backend      *badger.Backend
	items        *badger.ItemRepository
	fragments    *badger.FragmentRepository
	conns        *badger.ConnectionRepository
	sessions     *badger.SessionRepository
	provider     ai.Provider
	pipeline     *ingestion.Pipeline
	searcher     *search.Searcher
	discoverer   *connections.Discoverer
	consolidator *consolidate.Consolidator
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig overrides the AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider supplies a pre-built AI provider instead of constructing
// one from configuration. The database takes ownership and closes it.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all storage in memory. Nothing survives Close.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens or creates a vault at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	items, err := badger.NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	fragments, err := badger.NewFragmentRepository(backend)
	if err != nil {
		items.Close()
		backend.Close()
		return nil, err
	}

	sessions, err := badger.NewSessionRepository(backend)
	if err != nil {
		fragments.Close()
		items.Close()
		backend.Close()
		return nil, err
	}

	conns := badger.NewConnectionRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			sessions.Close()
			fragments.Close()
			items.Close()
			backend.Close()
			return nil, err
		}
	}

	db := &Database{
		backend:   backend,
		items:     items,
		fragments: fragments,
		conns:     conns,
		sessions:  sessions,
		provider:  provider,
		logger:    slog.Default().With("component", "database"),
	}

	db.discoverer, err = connections.NewDiscoverer(items, fragments, conns)
	if err != nil {
		db.closeStorage()
		return nil, err
	}

	db.pipeline, err = ingestion.NewPipeline(items, fragments, provider,
		ingestion.WithDiscoverer(db.discoverer))
	if err != nil {
		db.closeStorage()
		return nil, err
	}

	db.searcher, err = search.NewSearcher(items, sessions, backend, provider)
	if err != nil {
		db.pipeline.Release()
		db.closeStorage()
		return nil, err
	}

	db.consolidator, err = consolidate.NewConsolidator(items, fragments, provider.Merger(), db)
	if err != nil {
		db.pipeline.Release()
		db.closeStorage()
		return nil, err
	}

	return db, nil
}

// Ingest stores text in the vault and schedules embedding, enrichment,
// and connection discovery. See ingestion.Pipeline.Ingest.
func (db *Database) Ingest(ctx context.Context, kind core.ItemKind, text string, opts *ingestion.IngestOptions) (*core.Item, error) {
	return db.pipeline.Ingest(ctx, kind, text, opts)
}

// Search runs a query and returns ranked results.
func (db *Database) Search(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return db.searcher.Search(ctx, query, limit)
}

// RecordView appends an item to the session log and prunes old entries.
// Recently viewed items bias future rankings toward the session's topic.
func (db *Database) RecordView(ctx context.Context, itemID core.ID) error {
	if _, err := db.sessions.AppendView(ctx, itemID); err != nil {
		return err
	}
	return db.sessions.PruneViews(ctx, sessionLogKeep)
}

// Connections returns the items connected to the given item, strongest
// first. Connections to since-deleted items are omitted.
func (db *Database) Connections(ctx context.Context, itemID core.ID) ([]*core.ConnectedItem, error) {
	return db.discoverer.Connections(ctx, itemID)
}

// DiscoverConnections recomputes connections across the whole vault.
func (db *Database) DiscoverConnections(ctx context.Context) (int, error) {
	return db.discoverer.Sweep(ctx)
}

// Consolidate merges clusters of small, similar text notes into single
// documents. Returns the number of clusters merged.
func (db *Database) Consolidate(ctx context.Context) (int, error) {
	return db.consolidator.Run(ctx)
}

// GetItem retrieves one item by ID.
func (db *Database) GetItem(ctx context.Context, id core.ID) (*core.Item, error) {
	return db.items.GetItem(ctx, id)
}

// ListItems lists items matching the filter, most recent first.
func (db *Database) ListItems(ctx context.Context, filter storage.ItemFilter) ([]*core.Item, error) {
	return db.items.FilterItems(ctx, filter)
}

// DeleteItem removes an item together with its fragments and
// connections. The session log is left alone; readers skip entries
// whose items no longer exist.
func (db *Database) DeleteItem(ctx context.Context, id core.ID) error {
	if err := db.conns.DeleteConnectionsByItem(ctx, id); err != nil {
		return err
	}
	if err := db.fragments.DeleteFragmentsByItem(ctx, id); err != nil {
		return err
	}
	return db.items.DeleteItems(ctx, id)
}

// IngestMerged stores a consolidated document produced from several
// source notes. The merged document goes through the normal pipeline,
// so it is embedded and enriched like any other ingest.
func (db *Database) IngestMerged(ctx context.Context, title, body string) (*core.Item, error) {
	return db.pipeline.Ingest(ctx, core.KindText, body, &ingestion.IngestOptions{Title: title})
}

// ItemRepository exposes the underlying item storage.
func (db *Database) ItemRepository() storage.ItemRepository {
	return db.items
}

// FragmentRepository exposes the underlying fragment storage.
func (db *Database) FragmentRepository() storage.FragmentRepository {
	return db.fragments
}

// ConnectionRepository exposes the underlying connection storage.
func (db *Database) ConnectionRepository() storage.ConnectionRepository {
	return db.conns
}

// SessionRepository exposes the underlying session log.
func (db *Database) SessionRepository() storage.SessionRepository {
	return db.sessions
}

// WaitForProcessing blocks until scheduled embedding and enrichment
// work has drained. Call before Close so in-flight vectors are stored.
func (db *Database) WaitForProcessing() {
	db.pipeline.Wait()
}

// Close waits for in-flight processing, then releases the pipeline, the
// AI provider, and storage.
func (db *Database) Close() error {
	db.pipeline.Wait()
	db.pipeline.Release()

	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	return db.closeStorage()
}

func (db *Database) closeStorage() error {
	if err := db.sessions.Close(); err != nil {
		db.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := db.conns.Close(); err != nil {
		db.logger.Error("error closing connection repository", "err", err)
		return err
	}
	if err := db.fragments.Close(); err != nil {
		db.logger.Error("error closing fragment repository", "err", err)
		return err
	}
	if err := db.items.Close(); err != nil {
		db.logger.Error("error closing item repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
