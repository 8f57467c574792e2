package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

// ConnectionRepository implements storage.ConnectionRepository for BadgerDB.
type ConnectionRepository struct {
	backend *Backend
}

var _ storage.ConnectionRepository = (*ConnectionRepository)(nil)

// NewConnectionRepository creates a new ConnectionRepository.
func NewConnectionRepository(backend *Backend) *ConnectionRepository {
	return &ConnectionRepository{backend: backend}
}

// Close is a no-op; connections hold no sequence.
func (r *ConnectionRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ConnectionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertConnections stores connections under their canonical pair keys.
func (r *ConnectionRepository) UpsertConnections(ctx context.Context, connections ...*core.Connection) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, conn := range connections {
			if err := core.ValidateConnection(conn); err != nil {
				return err
			}

			conn.A, conn.B = core.CanonicalPair(conn.A, conn.B)
			conn.UpdatedAt = time.Now().UTC()

			key := makeConnectionKey(conn.A, conn.B)
			value := storage.MarshalConnection(conn)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Directional index entries for both endpoints
			if err := tx.Set(makeConnectionRefKey(conn.A, conn.B), storage.MarshalID(conn.B)); err != nil {
				return err
			}
			if err := tx.Set(makeConnectionRefKey(conn.B, conn.A), storage.MarshalID(conn.A)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteConnectionsByItem removes every connection touching an item.
func (r *ConnectionRepository) DeleteConnectionsByItem(ctx context.Context, itemID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		others, err := connectionPeers(tx, itemID)
		if err != nil {
			return err
		}

		for _, other := range others {
			if err := tx.Delete(makeConnectionKey(itemID, other)); err != nil {
				return err
			}
			if err := tx.Delete(makeConnectionRefKey(itemID, other)); err != nil {
				return err
			}
			if err := tx.Delete(makeConnectionRefKey(other, itemID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetConnectionsByItem retrieves all connections touching an item,
// ordered by score descending.
func (r *ConnectionRepository) GetConnectionsByItem(ctx context.Context, itemID core.ID) ([]*core.Connection, error) {
	var results []*core.Connection
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		others, err := connectionPeers(tx, itemID)
		if err != nil {
			return err
		}

		for _, other := range others {
			conn, err := readConnection(tx, makeConnectionKey(itemID, other))
			if err != nil {
				return err
			}
			if conn != nil {
				results = append(results, conn)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Connection) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
	return results, nil
}

// connectionPeers scans the directional index for the other endpoints of
// every connection touching the item.
func connectionPeers(tx *badger.Txn, itemID core.ID) ([]core.ID, error) {
	var others []core.ID

	startKey := makePartialConnectionRefKey(itemID)
	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		var other core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			other, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}
		others = append(others, other)
	}
	return others, nil
}

// readConnection reads a connection from the transaction.
// Returns nil without error when the key is absent.
func readConnection(tx *badger.Txn, key []byte) (*core.Connection, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var result *core.Connection
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		result, unmarshalErr = storage.UnmarshalConnection(val)
		return unmarshalErr
	})
	return result, err
}
