package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

// FragmentRepository implements storage.FragmentRepository for BadgerDB.
type FragmentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.FragmentRepository = (*FragmentRepository)(nil)

// NewFragmentRepository creates a new FragmentRepository.
func NewFragmentRepository(backend *Backend) (*FragmentRepository, error) {
	idSeq, err := backend.GetSequence(fragmentIDSeq)
	if err != nil {
		return nil, err
	}

	return &FragmentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *FragmentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *FragmentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddFragments adds one or more fragments to storage.
func (r *FragmentRepository) AddFragments(ctx context.Context, fragments ...*core.Fragment) ([]*core.Fragment, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, fragment := range fragments {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			fragment.Id = core.ID(nextID)

			key := makeFragmentKey(fragment.Id)
			value := storage.MarshalFragment(fragment)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update item index
			itemKey := makeFragmentItemKey(fragment.ItemId, fragment.Id)
			if err := tx.Set(itemKey, storage.MarshalID(fragment.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return fragments, err
}

// UpdateFragments updates existing fragments.
func (r *FragmentRepository) UpdateFragments(ctx context.Context, fragments ...*core.Fragment) ([]*core.Fragment, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, fragment := range fragments {
			key := makeFragmentKey(fragment.Id)

			old, err := readFragment(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Fragments never move between items
			fragment.ItemId = old.ItemId

			value := storage.MarshalFragment(fragment)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return fragments, err
}

// DeleteFragmentsByItem removes all fragments belonging to an item.
func (r *FragmentRepository) DeleteFragmentsByItem(ctx context.Context, itemID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := fragmentIDsForItem(tx, itemID)
		if err != nil {
			return err
		}

		for _, id := range ids {
			if err := tx.Delete(makeFragmentKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeFragmentItemKey(itemID, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetFragment retrieves a single fragment by ID.
func (r *FragmentRepository) GetFragment(ctx context.Context, id core.ID) (*core.Fragment, error) {
	var result *core.Fragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readFragment(tx, makeFragmentKey(id))
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

// GetFragmentsByItem retrieves all fragments of an item, ordered by
// sequence number ascending.
func (r *FragmentRepository) GetFragmentsByItem(ctx context.Context, itemID core.ID) ([]*core.Fragment, error) {
	var results []*core.Fragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := fragmentIDsForItem(tx, itemID)
		if err != nil {
			return err
		}

		for _, id := range ids {
			fragment, err := readFragment(tx, makeFragmentKey(id))
			if err != nil {
				return err
			}
			if fragment != nil {
				results = append(results, fragment)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Fragment) int {
		return a.Seq - b.Seq
	})
	return results, nil
}

// fragmentIDsForItem scans the item index for fragment IDs.
func fragmentIDsForItem(tx *badger.Txn, itemID core.ID) ([]core.ID, error) {
	var ids []core.ID

	startKey := makePartialFragmentItemKey(itemID)
	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readFragment reads a fragment from the transaction.
// Returns nil without error when the key is absent.
func readFragment(tx *badger.Txn, key []byte) (*core.Fragment, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var result *core.Fragment
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		result, unmarshalErr = storage.UnmarshalFragment(val)
		return unmarshalErr
	})
	return result, err
}
