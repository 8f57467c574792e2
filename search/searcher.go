package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/keepsake-dev/keepsake/ai"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

const (
	// DefaultLimit is used when the caller passes a non-positive limit.
	DefaultLimit = 10

	// Candidate gathering bounds. The fusion stage re-ranks, so each
	// source over-fetches relative to the final limit.
	candidateLimit = 50

	// Similarity floors for candidate gathering. Signals below these are
	// treated as absent; exact similarities are recomputed during fusion.
	contentMinSimilarity  = 0.25
	metadataMinSimilarity = 0.25
)

// Searcher routes queries through intent classification and ranks vault
// items by fused semantic, lexical, and session signals.
type Searcher struct {
	items      storage.ItemRepository
	sessions   storage.SessionRepository
	index      storage.Index
	embedder   ai.Embedder
	classifier ai.IntentClassifier
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock sets the time source used for recency scoring.
// Default is time.Now. Tests use this to pin result ages.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	items storage.ItemRepository,
	sessions storage.SessionRepository,
	index storage.Index,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if sessions == nil {
		return nil, ErrSessionRepositoryRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		items:      items,
		sessions:   sessions,
		index:      index,
		embedder:   provider.Embedder(),
		classifier: provider.IntentClassifier(),
		logger:     slog.Default().With("component", "searcher"),
		now:        time.Now,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs a query and returns up to limit ranked results.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, limit, nil)
}

// SearchWithMonitor runs a query with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	monitor.Start(query)

	intent := s.classifyIntent(ctx, query)
	monitor.AfterIntent(intent)

	if isTemporalBypass(intent) {
		return s.temporalListing(ctx, intent, limit, monitor)
	}
	return s.scoredSearch(ctx, query, intent, limit, monitor)
}

// classifyIntent asks the classifier for a routing decision. Any failure
// degrades to the deterministic fallback; a broken classifier must never
// break search.
func (s *Searcher) classifyIntent(ctx context.Context, query string) ai.Intent {
	intent, err := s.classifier.ClassifyIntent(ctx, query)
	if err != nil {
		s.logger.Warn("intent classification failed, using fallback", "query", query, "err", err)
		return ai.FallbackIntent(query)
	}
	return intent
}

// temporalListing answers a pure metadata query without touching the
// relevance machinery: filtered items, newest first, scored by recency.
func (s *Searcher) temporalListing(ctx context.Context, intent ai.Intent, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	filter := storage.ItemFilter{
		CreatedAfter: intent.Filters.CreatedAfter,
		Tags:         intent.Filters.Tags,
		Limit:        limit,
	}
	if intent.Filters.Kind != "" {
		kind, ok := core.ParseItemKind(intent.Filters.Kind)
		if !ok {
			s.logger.Warn("ignoring unknown kind filter", "kind", intent.Filters.Kind)
		} else {
			filter.Kind = kind
		}
	}

	items, err := s.items.FilterItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("temporal listing: %w", err)
	}

	now := s.now()
	results := make([]*core.SearchResult, 0, len(items))
	for _, item := range items {
		results = append(results, &core.SearchResult{
			Item:    item,
			Score:   recencyScore(item.CreatedAt, now),
			Snippet: item.Summary,
		})
	}

	sortResults(results)
	monitor.TemporalBypass(len(results))
	monitor.Finish(results)
	return results, nil
}

// scoredSearch runs the full pipeline: gather candidates from the
// content, metadata, and lexical sources, blend, boost, fuse, threshold.
func (s *Searcher) scoredSearch(ctx context.Context, query string, intent ai.Intent, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	// An over-aggressive classifier can strip the query down to nothing;
	// fall back to the verbatim query rather than embed a stub.
	semanticQuery := strings.TrimSpace(intent.SemanticQuery)
	if utf8.RuneCountInString(semanticQuery) < 2 {
		semanticQuery = query
	}

	vector, err := s.embedder.EmbedText(ctx, semanticQuery)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", semanticQuery, "err", err)
		return nil, err
	}

	candidates := make(map[core.ID]*candidate)
	ensure := func(id core.ID) *candidate {
		c, ok := candidates[id]
		if !ok {
			c = &candidate{}
			candidates[id] = c
		}
		return c
	}

	// 1. Content source: best fragment similarity per item
	contentMatches, err := s.index.SearchContent(ctx, vector, contentMinSimilarity, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("content search: %w", err)
	}
	contentIds := make([]uint64, 0, len(contentMatches))
	for _, m := range contentMatches {
		c := ensure(m.Fragment.ItemId)
		if m.Score > c.contentScore {
			c.contentScore = m.Score
			c.bestSemantic = m.Fragment.Body
		}
		contentIds = append(contentIds, uint64(m.Fragment.ItemId))
	}
	monitor.AfterContentSearch(contentIds)

	// 2. Metadata source: widens the candidate set; exact similarities
	// are recomputed against each candidate below
	metaMatches, err := s.index.SearchMetadata(ctx, vector, metadataMinSimilarity, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("metadata search: %w", err)
	}
	metaIds := make([]uint64, 0, len(metaMatches))
	for _, m := range metaMatches {
		ensure(m.Item.Id)
		metaIds = append(metaIds, uint64(m.Item.Id))
	}
	monitor.AfterMetadataSearch(metaIds)

	// 3. Lexical source: BM25 over query terms plus expansions, with the
	// short-fragment penalty applied per fragment
	terms := queryTerms(semanticQuery, intent.Expansions)
	lexicalMatches, err := s.index.SearchLexical(ctx, terms, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	lexicalIds := make([]uint64, 0, len(lexicalMatches))
	for _, m := range lexicalMatches {
		score := m.Score * shortDocFactor(m.Fragment.Body)
		c := ensure(m.Fragment.ItemId)
		if score > c.lexicalScore {
			c.lexicalScore = score
			c.bestLexical = m.Fragment.Body
		}
		lexicalIds = append(lexicalIds, uint64(m.Fragment.ItemId))
	}
	monitor.AfterLexicalSearch(lexicalIds)

	if len(candidates) == 0 {
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}

	// Resolve candidate items
	ids := make([]core.ID, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	items, err := s.items.GetItems(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("resolving candidates: %w", err)
	}
	for _, item := range items {
		candidates[item.Id].item = item
	}

	for id, c := range candidates {
		if c.item == nil {
			// Orphaned fragment or stale index entry
			s.logger.Warn("candidate item missing, skipping", "itemID", id)
			delete(candidates, id)
			continue
		}
		if !matchesIntentFilters(c.item, intent) {
			delete(candidates, id)
			continue
		}
		if len(c.item.MetaVector) > 0 {
			c.hasMeta = true
			c.metaScore = core.CosineSimilarity(vector, c.item.MetaVector)
		} else if c.item.Enriched {
			s.logger.Warn("enriched item missing metadata vector", "itemID", id)
		}
	}

	// 4. Session boost on the semantic base
	sessionVec := s.sessionVector(ctx)
	for id, c := range candidates {
		multiplier := sessionMultiplier(sessionVec, c.item.MetaVector)
		if multiplier > 1.0 {
			monitor.SessionBoost(uint64(id), multiplier)
		}
		c.boostedBase = c.semanticBase() * multiplier
	}

	// 5. Fuse, threshold, rank
	normalizeLexical(candidates)

	results := make([]*core.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		c.finalScore = SemanticWeight*c.boostedBase + LexicalWeight*c.lexicalScore
		if c.finalScore < ScoreThreshold {
			continue
		}

		snippet := c.bestSemantic
		if snippet == "" {
			snippet = c.bestLexical
		}
		if snippet == "" {
			snippet = c.item.Summary
		}

		results = append(results, &core.SearchResult{
			Item:    c.item,
			Score:   c.finalScore,
			Snippet: snippet,
		})
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	monitor.Finish(results)
	return results, nil
}

// matchesIntentFilters applies metadata-filter predicates to a candidate
// on the scored path. Semantic-search intents carry no filters.
func matchesIntentFilters(item *core.Item, intent ai.Intent) bool {
	if intent.Kind != ai.IntentMetadataFilter || intent.Filters.Empty() {
		return true
	}
	if intent.Filters.Kind != "" && item.Kind.String() != intent.Filters.Kind {
		return false
	}
	if !intent.Filters.CreatedAfter.IsZero() && item.CreatedAt.Before(intent.Filters.CreatedAfter) {
		return false
	}
	for _, want := range intent.Filters.Tags {
		if !slices.Contains(item.Tags, want) {
			return false
		}
	}
	return true
}
