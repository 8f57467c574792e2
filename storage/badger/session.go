package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
// The view log is append-only; entries are keyed by timestamp so recency
// reads are a short reverse scan.
type SessionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) (*SessionRepository, error) {
	idSeq, err := backend.GetSequence(sessionIDSeq)
	if err != nil {
		return nil, err
	}

	return &SessionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SessionRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *SessionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendView records that an item was viewed now.
func (r *SessionRepository) AppendView(ctx context.Context, itemID core.ID) (*core.SessionEntry, error) {
	entry := &core.SessionEntry{
		ItemId:   itemID,
		ViewedAt: time.Now().UTC(),
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// The sequence disambiguates entries in the same microsecond
		seq, err := r.idSeq.Next()
		if err != nil {
			return err
		}

		key := makeSessionKey(entry.ViewedAt, seq)
		if err := tx.Set(key, storage.MarshalSessionEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return entry, err
}

// RecentViews retrieves up to limit entries, most recent first.
func (r *SessionRepository) RecentViews(ctx context.Context, limit int) ([]*core.SessionEntry, error) {
	var results []*core.SessionEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeSessionKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), ^uint64(0))
		prefix := []byte(sessionPrefix + ":")

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var entry *core.SessionEntry
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalSessionEntry(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, entry)
		}
		return nil
	}, false)

	return results, err
}

// PruneViews drops all but the keep most recent entries.
func (r *SessionRepository) PruneViews(ctx context.Context, keep int) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect all log keys in order, oldest first
		var keys [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		if len(keys) <= keep {
			return tx.Commit()
		}

		for _, key := range keys[:len(keys)-keep] {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
