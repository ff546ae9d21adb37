package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/store"
)

const wordColumns = "word, marker, translation, tier, used, has_error"

// WordStore implements store.WordStore with plain SQL.
type WordStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewWordStore creates a WordStore over a connection or transaction.
// If logger is nil, a default logger will be used.
func NewWordStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *WordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if dialect == nil {
		panic("dialect cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &WordStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "word_store")),
	}
}

// Ensure WordStore implements store.WordStore interface
var _ store.WordStore = (*WordStore)(nil)

// WithTx implements store.WordStore.WithTx
func (s *WordStore) WithTx(tx *sql.Tx) store.WordStore {
	return &WordStore{
		db:      tx,
		dialect: s.dialect,
		logger:  s.logger,
	}
}

func (s *WordStore) q(query string) string {
	return s.dialect.RewriteQuery(query)
}

func (s *WordStore) fail(ctx context.Context, op string, err error) error {
	mapped := s.dialect.MapError(err)
	logger.FromContextOrDefault(ctx, s.logger).Error("word store operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return store.NewStoreError("word", op, "database error", mapped)
}

// InsertIfAbsent implements store.WordStore.InsertIfAbsent
func (s *WordStore) InsertIfAbsent(ctx context.Context, entries []*domain.WordEntry) (int, error) {
	query := s.q(`INSERT INTO words (` + wordColumns + `) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (word) DO NOTHING`)

	inserted := 0
	for _, e := range entries {
		if e == nil {
			continue
		}
		if err := e.Validate(); err != nil {
			return inserted, fmt.Errorf("%w: %q: %w", store.ErrInvalidEntity, e.Text, err)
		}

		res, err := s.db.ExecContext(ctx, query,
			e.Text, e.Marker, e.Translation, e.Tier, e.Used, e.HasError)
		if err != nil {
			return inserted, s.fail(ctx, "insert", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, s.fail(ctx, "insert", err)
		}
		inserted += int(n)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("inserted word entries",
		slog.Int("offered", len(entries)),
		slog.Int("inserted", inserted))

	return inserted, nil
}

// IsEmpty implements store.WordStore.IsEmpty
func (s *WordStore) IsEmpty(ctx context.Context) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT 1 FROM words LIMIT 1`)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, s.fail(ctx, "is_empty", err)
	}
	return false, nil
}

// GetByText implements store.WordStore.GetByText
func (s *WordStore) GetByText(ctx context.Context, text string) (*domain.WordEntry, error) {
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+wordColumns+` FROM words WHERE word = ?`), text)

	w, err := scanWord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrWordNotFound
	}
	if err != nil {
		return nil, s.fail(ctx, "get", err)
	}
	return w, nil
}

// ListUnusedTexts implements store.WordStore.ListUnusedTexts
func (s *WordStore) ListUnusedTexts(ctx context.Context, tier string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT word FROM words WHERE tier = ? AND used = ? ORDER BY word`), tier, false)
	if err != nil {
		return nil, s.fail(ctx, "list_unused", err)
	}
	texts, err := collectStrings(rows)
	if err != nil {
		return nil, s.fail(ctx, "list_unused", err)
	}
	return texts, nil
}

// ListTranslations implements store.WordStore.ListTranslations
func (s *WordStore) ListTranslations(ctx context.Context, tier, excludeText string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT translation FROM words WHERE tier = ? AND word <> ? ORDER BY word`),
		tier, excludeText)
	if err != nil {
		return nil, s.fail(ctx, "list_translations", err)
	}
	translations, err := collectStrings(rows)
	if err != nil {
		return nil, s.fail(ctx, "list_translations", err)
	}
	return translations, nil
}

// ListWithError implements store.WordStore.ListWithError
func (s *WordStore) ListWithError(ctx context.Context) ([]*domain.WordEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+wordColumns+` FROM words WHERE has_error = ? ORDER BY tier, word`), true)
	if err != nil {
		return nil, s.fail(ctx, "list_errors", err)
	}
	defer func() { _ = rows.Close() }()

	var words []*domain.WordEntry
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, s.fail(ctx, "list_errors", err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list_errors", err)
	}
	return words, nil
}

// CountByTier implements store.WordStore.CountByTier
func (s *WordStore) CountByTier(ctx context.Context, tier string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		s.q(`SELECT COUNT(*) FROM words WHERE tier = ?`), tier).Scan(&n); err != nil {
		return 0, s.fail(ctx, "count_tier", err)
	}
	return n, nil
}

// CountWithError implements store.WordStore.CountWithError
func (s *WordStore) CountWithError(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		s.q(`SELECT COUNT(*) FROM words WHERE has_error = ?`), true).Scan(&n); err != nil {
		return 0, s.fail(ctx, "count_errors", err)
	}
	return n, nil
}

// MarkUsed implements store.WordStore.MarkUsed
func (s *WordStore) MarkUsed(ctx context.Context, text string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE words SET used = ? WHERE word = ? AND used = ?`), true, text, false)
	if err != nil {
		return false, s.fail(ctx, "mark_used", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, s.fail(ctx, "mark_used", err)
	}
	return n == 1, nil
}

// ResetUsed implements store.WordStore.ResetUsed
func (s *WordStore) ResetUsed(ctx context.Context, tier string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE words SET used = ? WHERE tier = ?`), false, tier)
	if err != nil {
		return 0, s.fail(ctx, "reset_used", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail(ctx, "reset_used", err)
	}
	return int(n), nil
}

// SetError implements store.WordStore.SetError
func (s *WordStore) SetError(ctx context.Context, text string, hasError bool) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE words SET has_error = ? WHERE word = ?`), hasError, text)
	if err != nil {
		return s.fail(ctx, "set_error", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail(ctx, "set_error", err)
	}
	if n == 0 {
		return store.ErrWordNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWord(row rowScanner) (*domain.WordEntry, error) {
	var w domain.WordEntry
	if err := row.Scan(&w.Text, &w.Marker, &w.Translation, &w.Tier, &w.Used, &w.HasError); err != nil {
		return nil, err
	}
	return &w, nil
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
