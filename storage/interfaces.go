package storage

import (
	"context"
	"time"

	"github.com/keepsake-dev/keepsake/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}

// ItemFilter narrows item listings. Zero-valued fields match everything.
type ItemFilter struct {
	// Kind restricts results to a single item kind when non-zero.
	Kind core.ItemKind

	// CreatedAfter restricts results to items created at or after the
	// given instant when non-zero.
	CreatedAfter time.Time

	// Tags restricts results to items carrying every listed tag.
	Tags []string

	// Limit caps the number of results when positive.
	Limit int
}

// ItemRepository provides operations for managing vault items.
type ItemRepository interface {
	Repository

	// AddItems adds one or more items to storage.
	// Generates new IDs from sequence and sets CreatedAt/UpdatedAt.
	// Returns the items with generated IDs and timestamps populated.
	AddItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error)

	// UpdateItems updates existing items.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any item doesn't exist.
	UpdateItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error)

	// DeleteItems removes items by their IDs along with associated indices.
	// Returns ErrNotFound if any item doesn't exist.
	DeleteItems(ctx context.Context, ids ...core.ID) error

	// GetItem retrieves a single item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id core.ID) (*core.Item, error)

	// GetItems retrieves multiple items by their IDs.
	// Returns only the items that exist (no error for missing items).
	GetItems(ctx context.Context, ids ...core.ID) ([]*core.Item, error)

	// GetItemByHash finds an item by its content hash.
	// Returns ErrNotFound if no item carries the hash.
	GetItemByHash(ctx context.Context, hash string) (*core.Item, error)

	// FilterItems lists items matching the filter, ordered by CreatedAt
	// descending (most recent first).
	FilterItems(ctx context.Context, filter ItemFilter) ([]*core.Item, error)

	// ListItemIDs returns the IDs of all stored items in ascending order.
	ListItemIDs(ctx context.Context) ([]core.ID, error)
}

// FragmentRepository provides operations for managing item fragments.
type FragmentRepository interface {
	Repository

	// AddFragments adds one or more fragments to storage.
	// Generates new IDs from sequence.
	AddFragments(ctx context.Context, fragments ...*core.Fragment) ([]*core.Fragment, error)

	// UpdateFragments updates existing fragments (typically to attach
	// freshly computed vectors).
	// Returns ErrNotFound if any fragment doesn't exist.
	UpdateFragments(ctx context.Context, fragments ...*core.Fragment) ([]*core.Fragment, error)

	// DeleteFragmentsByItem removes all fragments belonging to an item.
	// Deleting fragments of an unknown item is not an error.
	DeleteFragmentsByItem(ctx context.Context, itemID core.ID) error

	// GetFragment retrieves a single fragment by ID.
	// Returns ErrNotFound if the fragment doesn't exist.
	GetFragment(ctx context.Context, id core.ID) (*core.Fragment, error)

	// GetFragmentsByItem retrieves all fragments of an item, ordered by
	// sequence number ascending.
	GetFragmentsByItem(ctx context.Context, itemID core.ID) ([]*core.Fragment, error)
}

// ConnectionRepository provides operations for managing item connections.
type ConnectionRepository interface {
	Repository

	// UpsertConnections stores connections, replacing any existing entry
	// for the same canonical (A, B) pair.
	UpsertConnections(ctx context.Context, connections ...*core.Connection) error

	// DeleteConnectionsByItem removes every connection touching an item.
	DeleteConnectionsByItem(ctx context.Context, itemID core.ID) error

	// GetConnectionsByItem retrieves all connections touching an item,
	// ordered by score descending.
	GetConnectionsByItem(ctx context.Context, itemID core.ID) ([]*core.Connection, error)
}

// SessionRepository provides operations for the append-only view log.
type SessionRepository interface {
	Repository

	// AppendView records that an item was viewed now.
	AppendView(ctx context.Context, itemID core.ID) (*core.SessionEntry, error)

	// RecentViews retrieves up to limit entries, most recent first.
	RecentViews(ctx context.Context, limit int) ([]*core.SessionEntry, error)

	// PruneViews drops all but the keep most recent entries.
	PruneViews(ctx context.Context, keep int) error
}

// FragmentMatch pairs a fragment with a similarity or relevance score.
type FragmentMatch struct {
	Fragment *core.Fragment
	Score    float32
}

// ItemMatch pairs an item with a similarity score.
type ItemMatch struct {
	Item  *core.Item
	Score float32
}

// Index provides the search primitives the query path builds on.
// Scores from the vector searches are cosine similarities; scores from
// the lexical search are raw BM25 values (non-negative, unbounded).
type Index interface {
	// SearchContent finds fragments whose content vectors are similar to
	// the query vector. Returns matches with similarity >= minSimilarity,
	// up to limit results, ordered by similarity descending.
	SearchContent(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*FragmentMatch, error)

	// SearchMetadata finds items whose metadata vectors are similar to
	// the query vector. Items without a metadata vector are skipped.
	SearchMetadata(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*ItemMatch, error)

	// SearchLexical scores fragments against the query terms with BM25.
	// Returns up to limit matches with positive scores, ordered by score
	// descending.
	SearchLexical(ctx context.Context, terms []string, limit int) ([]*FragmentMatch, error)
}
