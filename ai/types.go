package ai

import (
	"fmt"
	"time"
)

// IntentKind classifies how a query should be routed.
type IntentKind string

const (
	// IntentSemanticSearch is a conceptual search without metadata constraints.
	IntentSemanticSearch IntentKind = "semantic_search"
	// IntentMetadataFilter is an explicit request for kinds, dates, or tags.
	IntentMetadataFilter IntentKind = "metadata_filter"
)

// MaxExpansions is the maximum number of lexical expansion terms an
// intent may carry. Classifiers truncate beyond this.
const MaxExpansions = 3

// Filters holds the structured predicates parsed from a query.
type Filters struct {
	// Kind restricts results to one item kind ("text", "image", "pdf",
	// "audio"). Empty means no kind filter.
	Kind string

	// CreatedAfter restricts results to items created at or after this
	// time. Zero means no date filter.
	CreatedAfter time.Time

	// Tags restricts results to items carrying all of these tags.
	Tags []string
}

// Empty reports whether no filter predicate is set.
func (f Filters) Empty() bool {
	return f.Kind == "" && f.CreatedAfter.IsZero() && len(f.Tags) == 0
}

// Intent is the structured interpretation of a raw query. It is a
// transient value: routing decision, parsed filters, the semantic query
// with filter language stripped, and lexical expansion terms. Intents are
// never persisted.
type Intent struct {
	Kind          IntentKind
	Filters       Filters
	SemanticQuery string
	// Expansions are synonyms of the core concept used to widen lexical
	// recall only. They must never be injected into the vector query.
	Expansions []string
}

// Validate checks the intent against the response schema.
func (i *Intent) Validate() error {
	if i.Kind != IntentSemanticSearch && i.Kind != IntentMetadataFilter {
		return fmt.Errorf("%w: unknown intent kind %q", ErrSchema, i.Kind)
	}
	if len(i.Expansions) > MaxExpansions {
		return fmt.Errorf("%w: %d expansion terms exceeds limit of %d", ErrSchema, len(i.Expansions), MaxExpansions)
	}
	return nil
}

// FallbackIntent returns the deterministic, side-effect-free intent used
// whenever classification fails, times out, or returns an invalid schema:
// a plain semantic search for the verbatim query with no filters and no
// expansion terms.
func FallbackIntent(query string) Intent {
	return Intent{
		Kind:          IntentSemanticSearch,
		SemanticQuery: query,
	}
}

// Enrichment is the descriptive metadata generated for an item.
type Enrichment struct {
	Title   string
	Tags    []string
	Summary string
}

// Merged is the result of consolidating several texts into one document.
type Merged struct {
	Title string
	Body  string
}
