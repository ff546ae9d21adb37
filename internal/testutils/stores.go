package testutils

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/sqlite"
	"github.com/phrazzld/vocab-drill/internal/platform/sqlstore"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// TestStores bundles a database with the stores built on it.
type TestStores struct {
	DB      *sql.DB
	Dialect sqlstore.Dialect
	Words   store.WordStore
	Fields  store.SessionFieldStore
}

// OpenSQLite opens a migrated SQLite database in t.TempDir().
// The database is closed when the test finishes.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "drill.db"))
	require.NoError(t, err, "Failed to open SQLite database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlite.Dialect{}), "Failed to migrate SQLite database")
	return db
}

// NewSQLiteStores returns stores backed by a fresh SQLite database.
func NewSQLiteStores(t *testing.T) TestStores {
	t.Helper()

	db := OpenSQLite(t)
	return NewStores(db, sqlite.Dialect{})
}

// NewStores builds the SQL stores for an already migrated database.
func NewStores(db *sql.DB, dialect sqlstore.Dialect) TestStores {
	logger := DiscardLogger()
	return TestStores{
		DB:      db,
		Dialect: dialect,
		Words:   sqlstore.NewWordStore(db, dialect, logger),
		Fields:  sqlstore.NewSessionFieldStore(db, dialect, logger),
	}
}

// Word builds a valid entry or fails the test.
func Word(t *testing.T, marker, text, translation, tier string) *domain.WordEntry {
	t.Helper()

	w, err := domain.NewWordEntry(marker, text, translation, tier)
	require.NoError(t, err, "Failed to create test word")
	return w
}

// MustInsertWords stores entries and requires every one to be new.
func MustInsertWords(t *testing.T, words store.WordStore, entries ...*domain.WordEntry) {
	t.Helper()

	n, err := words.InsertIfAbsent(context.Background(), entries)
	require.NoError(t, err, "Failed to insert test words")
	require.Equal(t, len(entries), n, "Expected every test word to be new")
}
