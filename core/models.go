package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Items and fragments receive sequence-assigned IDs from the storage layer.
type ID uint64

// HashContent computes a deterministic content hash using BLAKE2b.
// Identical text always produces the identical hash, which is how
// duplicate ingestion is detected.
func HashContent(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ItemKind categorizes the origin of an item's content.
type ItemKind int

const (
	// KindText represents plain text content.
	KindText ItemKind = iota + 1
	// KindImage represents text extracted from an image.
	KindImage
	// KindPDF represents text extracted from a PDF document.
	KindPDF
	// KindAudio represents a transcription of audio content.
	KindAudio
)

// String returns the lowercase name used in filters and CLI output.
func (k ItemKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// ParseItemKind converts a lowercase kind name to an ItemKind.
// Returns 0 and false if the name is not recognized.
func ParseItemKind(s string) (ItemKind, bool) {
	switch s {
	case "text":
		return KindText, true
	case "image":
		return KindImage, true
	case "pdf":
		return KindPDF, true
	case "audio":
		return KindAudio, true
	default:
		return 0, false
	}
}

// Item represents one ingested unit of content with its metadata.
// Items are created on ingestion, enriched asynchronously with a title,
// tags, summary and metadata embedding, and only ever deleted by
// consolidation. Search never mutates an item.
type Item struct {
	Id         ID
	SourcePath string
	Kind       ItemKind
	Hash       string    // Content hash for duplicate detection
	Title      string    // Populated by enrichment
	Tags       []string  // Populated by enrichment
	Summary    string    // Populated by enrichment
	MetaVector []float32 // Embedding of title+tags+summary, populated after enrichment
	ModifiedAt time.Time // Source file modification time, if known
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Enriched   bool
}

// Fragment is one ordered chunk of an item's extracted text.
// Fragments are immutable once created and owned exclusively by their item.
// The content embedding is attached 1:1 to the fragment.
type Fragment struct {
	Id     ID
	ItemId ID
	Seq    int       // Position within the item
	Body   string    // Raw chunk text
	Vector []float32 // Content embedding, populated by the embedding processor
}

// Connection records a high-similarity relationship between two items.
// The pair is unordered: it is always stored canonically with A < B.
type Connection struct {
	A         ID
	B         ID
	Score     float32 // Cosine similarity in [0,1]
	UpdatedAt time.Time
}

// CanonicalPair returns the two item IDs in canonical (smaller, larger) order.
func CanonicalPair(a, b ID) (ID, ID) {
	if a > b {
		return b, a
	}
	return a, b
}

// SessionEntry records that an item was displayed to the user.
// The session log is append-only; only the most recent entries matter
// for ranking, so older entries may be pruned freely.
type SessionEntry struct {
	ItemId   ID
	ViewedAt time.Time
}

// SearchResult is one ranked item returned from a search.
type SearchResult struct {
	Item    *Item
	Score   float32
	Snippet string // Best-matching fragment text
}

// ConnectedItem is one endpoint of a connection, resolved to its item.
type ConnectedItem struct {
	Item  *Item
	Score float32
}
