package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/vocab-drill/internal/domain"
)

// WordStore defines the interface for word entry persistence.
// Entries are keyed by their text. Only the used and error flags change
// after an entry has been inserted.
type WordStore interface {
	// InsertIfAbsent stores every entry whose text is not already present and
	// leaves existing rows untouched. It returns the number of rows inserted.
	// Entries must be valid according to domain validation rules.
	InsertIfAbsent(ctx context.Context, entries []*domain.WordEntry) (int, error)

	// IsEmpty reports whether the store holds no entries at all.
	IsEmpty(ctx context.Context) (bool, error)

	// GetByText retrieves a single entry.
	// Returns ErrWordNotFound if no entry has the given text.
	GetByText(ctx context.Context, text string) (*domain.WordEntry, error)

	// ListUnusedTexts returns the texts of entries in tier whose used flag is false.
	ListUnusedTexts(ctx context.Context, tier string) ([]string, error)

	// ListTranslations returns the translations of every entry in tier except
	// the entry whose text equals excludeText. Duplicates are preserved.
	ListTranslations(ctx context.Context, tier, excludeText string) ([]string, error)

	// ListWithError returns every entry whose error flag is set, across tiers.
	ListWithError(ctx context.Context) ([]*domain.WordEntry, error)

	// CountByTier returns the number of entries in tier.
	CountByTier(ctx context.Context, tier string) (int, error)

	// CountWithError returns the number of entries whose error flag is set.
	CountWithError(ctx context.Context) (int, error)

	// MarkUsed sets the used flag on the entry only if it is currently unused.
	// It returns false when the entry was already used or does not exist, so
	// callers can treat it as a compare-and-set.
	MarkUsed(ctx context.Context, text string) (bool, error)

	// ResetUsed clears the used flag on every entry in tier and returns the
	// number of entries affected.
	ResetUsed(ctx context.Context, tier string) (int, error)

	// SetError sets or clears the error flag of an entry.
	// Returns ErrWordNotFound if no entry has the given text.
	SetError(ctx context.Context, text string, hasError bool) error

	// WithTx returns a new WordStore instance that uses the provided transaction.
	// Use it with RunInTransaction when several calls must commit together:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       words := wordStore.WithTx(tx)
	//       ...
	//   })
	WithTx(tx *sql.Tx) WordStore
}
