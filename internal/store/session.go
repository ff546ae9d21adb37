package store

import (
	"context"
	"database/sql"
)

// SessionFieldStore persists session fields as key/value pairs.
// Keys are namespaced by the caller, e.g. "completedCount_A1".
type SessionFieldStore interface {
	// Get returns the stored value and true, or "" and false when the key has
	// never been written or was deleted.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// WithTx returns a new SessionFieldStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SessionFieldStore
}
