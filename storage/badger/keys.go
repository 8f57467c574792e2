package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/keepsake-dev/keepsake/core"
)

// Key prefixes for different data types
const (
	itemPrefix          = "itmrec"
	itemHashPrefix      = "itmhsh"
	itemDatePrefix      = "itmdat"
	itemIDSeq           = "itmseq"
	fragmentPrefix      = "frgrec"
	fragmentItemPrefix  = "frgitm"
	fragmentIDSeq       = "frgseq"
	connectionPrefix    = "cnxrec"
	connectionRefPrefix = "cnxref"
	sessionPrefix       = "sesrec"
	sessionIDSeq        = "sesseq"
)

// makeItemKey generates a key for an item by ID.
func makeItemKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", itemPrefix, id))
}

// makeItemHashKey generates a key for the content-hash index.
func makeItemHashKey(hash string) []byte {
	return []byte(fmt.Sprintf("%s:%s", itemHashPrefix, hash))
}

// makeItemDateKey generates a composite key for the creation-date index.
// Format: prefix:timestamp:id
func makeItemDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := itemDatePrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialItemDateKey generates a partial key for date range scans.
// Format: prefix:timestamp
func makePartialItemDateKey(timestamp time.Time) []byte {
	prefix := itemDatePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeFragmentKey generates a key for a fragment by ID.
func makeFragmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", fragmentPrefix, id))
}

// makeFragmentItemKey generates a composite key for the item index.
// Format: prefix:itemID:fragmentID
func makeFragmentItemKey(itemID, fragmentID core.ID) []byte {
	prefix := fragmentItemPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(itemID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(fragmentID))
	return buf
}

// makePartialFragmentItemKey generates a partial key for per-item scans.
// Format: prefix:itemID
func makePartialFragmentItemKey(itemID core.ID) []byte {
	prefix := fragmentItemPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(itemID))
	return buf
}

// makeConnectionKey generates the canonical key for a connection.
// The pair is stored once under (smaller, larger) order.
// Format: prefix:a:b
func makeConnectionKey(a, b core.ID) []byte {
	a, b = core.CanonicalPair(a, b)
	prefix := connectionPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(a))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(b))
	return buf
}

// makeConnectionRefKey generates a directional index entry so both
// endpoints of a connection can find it.
// Format: prefix:item:other
func makeConnectionRefKey(item, other core.ID) []byte {
	prefix := connectionRefPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(item))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(other))
	return buf
}

// makePartialConnectionRefKey generates a partial key for per-item scans.
// Format: prefix:item
func makePartialConnectionRefKey(item core.ID) []byte {
	prefix := connectionRefPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(item))
	return buf
}

// makeSessionKey generates a composite key for a session log entry.
// The sequence number keeps entries with identical timestamps distinct.
// Format: prefix:timestamp:seq
func makeSessionKey(timestamp time.Time, seq uint64) []byte {
	prefix := sessionPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}
