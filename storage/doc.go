// Package storage defines the persistence interfaces for the keepsake
// vault: repositories for items, fragments, connections, and the session
// view log, plus the index primitives the search path depends on (vector
// similarity over the content and metadata spaces, and lexical BM25 over
// fragment bodies).
//
// Implementations live in subpackages; storage/badger provides the
// BadgerDB-backed implementation. All implementations must be safe for
// concurrent use.
package storage
