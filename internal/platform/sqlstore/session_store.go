package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// SessionFieldStore implements store.SessionFieldStore on the session_fields table.
type SessionFieldStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewSessionFieldStore creates a SessionFieldStore over a connection or transaction.
func NewSessionFieldStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *SessionFieldStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if dialect == nil {
		panic("dialect cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionFieldStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "session_field_store")),
	}
}

var _ store.SessionFieldStore = (*SessionFieldStore)(nil)

// WithTx implements store.SessionFieldStore.WithTx
func (s *SessionFieldStore) WithTx(tx *sql.Tx) store.SessionFieldStore {
	return &SessionFieldStore{
		db:      tx,
		dialect: s.dialect,
		logger:  s.logger,
	}
}

func (s *SessionFieldStore) fail(ctx context.Context, op, key string, err error) error {
	logger.FromContextOrDefault(ctx, s.logger).Error("session field operation failed",
		slog.String("operation", op),
		slog.String("field", key),
		slog.String("error", err.Error()))
	return store.NewStoreError("session_field", op, "database error", s.dialect.MapError(err))
}

// Get implements store.SessionFieldStore.Get
func (s *SessionFieldStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		s.dialect.RewriteQuery(`SELECT value FROM session_fields WHERE name = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.fail(ctx, "get", key, err)
	}
	return value, true, nil
}

// Set implements store.SessionFieldStore.Set
func (s *SessionFieldStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.RewriteQuery(
		`INSERT INTO session_fields (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, value)
	if err != nil {
		return s.fail(ctx, "set", key, err)
	}
	return nil
}

// Delete implements store.SessionFieldStore.Delete
func (s *SessionFieldStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		s.dialect.RewriteQuery(`DELETE FROM session_fields WHERE name = ?`), key)
	if err != nil {
		return s.fail(ctx, "delete", key, err)
	}
	return nil
}
