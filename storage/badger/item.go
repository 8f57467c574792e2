package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (*ItemRepository, error) {
	idSeq, err := backend.GetSequence(itemIDSeq)
	if err != nil {
		return nil, err
	}

	return &ItemRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ItemRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddItems adds one or more items to storage.
func (r *ItemRepository) AddItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			item.Id = core.ID(nextID)

			if item.CreatedAt.IsZero() {
				item.CreatedAt = time.Now().UTC()
			}
			item.UpdatedAt = item.CreatedAt

			// Store primary record
			key := makeItemKey(item.Id)
			value := storage.MarshalItem(item)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update hash index
			if item.Hash != "" {
				if err := tx.Set(makeItemHashKey(item.Hash), storage.MarshalID(item.Id)); err != nil {
					return err
				}
			}

			// Update date index
			dateKey := makeItemDateKey(item.CreatedAt, item.Id)
			if err := tx.Set(dateKey, storage.MarshalID(item.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// UpdateItems updates existing items.
func (r *ItemRepository) UpdateItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			key := makeItemKey(item.Id)

			// Read old record to detect index changes
			old, err := readItem(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// CreatedAt is immutable; keep the date index stable
			item.CreatedAt = old.CreatedAt
			item.UpdatedAt = time.Now().UTC()

			value := storage.MarshalItem(item)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update hash index if the content hash changed
			if old.Hash != item.Hash {
				if old.Hash != "" {
					if err := tx.Delete(makeItemHashKey(old.Hash)); err != nil {
						return err
					}
				}
				if item.Hash != "" {
					if err := tx.Set(makeItemHashKey(item.Hash), storage.MarshalID(item.Id)); err != nil {
						return err
					}
				}
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// DeleteItems removes items by their IDs.
func (r *ItemRepository) DeleteItems(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeItemKey(id)

			// Read record to get metadata for index cleanup
			item, err := readItem(tx, key)
			if err != nil {
				return err
			}
			if item == nil {
				return storage.ErrNotFound
			}

			if item.Hash != "" {
				if err := tx.Delete(makeItemHashKey(item.Hash)); err != nil {
					return err
				}
			}

			if err := tx.Delete(makeItemDateKey(item.CreatedAt, item.Id)); err != nil {
				return err
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetItem retrieves a single item by ID.
func (r *ItemRepository) GetItem(ctx context.Context, id core.ID) (*core.Item, error) {
	var result *core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readItem(tx, makeItemKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetItems retrieves multiple items by their IDs.
func (r *ItemRepository) GetItems(ctx context.Context, ids ...core.ID) ([]*core.Item, error) {
	var result []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := readItem(tx, makeItemKey(id))
			if err != nil {
				return err
			}
			if item != nil {
				result = append(result, item)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetItemByHash finds an item by its content hash.
func (r *ItemRepository) GetItemByHash(ctx context.Context, hash string) (*core.Item, error) {
	var result *core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		hashItem, err := tx.Get(makeItemHashKey(hash))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id core.ID
		if err := hashItem.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readItem(tx, makeItemKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FilterItems lists items matching the filter, most recent first.
func (r *ItemRepository) FilterItems(ctx context.Context, filter storage.ItemFilter) ([]*core.Item, error) {
	var results []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Walk the date index backwards from the far future
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialItemDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(itemDatePrefix + ":")

		var lowerBound []byte
		if !filter.CreatedAfter.IsZero() {
			lowerBound = makePartialItemDateKey(filter.CreatedAfter)
		}

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()

			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			// Date keys sort by timestamp; once below the bound we are done
			if lowerBound != nil && slices.Compare(key[:len(lowerBound)], lowerBound) < 0 {
				break
			}

			var itemID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				itemID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := readItem(tx, makeItemKey(itemID))
			if err != nil {
				return err
			}
			if item == nil {
				continue
			}

			if !matchesFilter(item, filter) {
				continue
			}

			results = append(results, item)
			if filter.Limit > 0 && len(results) >= filter.Limit {
				break
			}
		}
		return nil
	}, false)

	return results, err
}

// ListItemIDs returns the IDs of all stored items in ascending order.
func (r *ItemRepository) ListItemIDs(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(itemDatePrefix + ":")
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return ids, nil
}

// matchesFilter reports whether an item satisfies the kind and tag filters.
// The date bound is handled by the index scan.
func matchesFilter(item *core.Item, filter storage.ItemFilter) bool {
	if filter.Kind != 0 && item.Kind != filter.Kind {
		return false
	}
	for _, want := range filter.Tags {
		if !slices.Contains(item.Tags, want) {
			return false
		}
	}
	return true
}

// readItem reads an item from the transaction.
// Returns nil without error when the key is absent.
func readItem(tx *badger.Txn, key []byte) (*core.Item, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var result *core.Item
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		result, unmarshalErr = storage.UnmarshalItem(val)
		return unmarshalErr
	})
	return result, err
}
