// Package seed loads the bundled word list into an empty store on first run.
package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/lo"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// firstLaunchDoneValue is stored under domain.FieldFirstLaunchDone once seeding ran.
const firstLaunchDoneValue = "true"

// Decode reads a JSON array of seed records. Records that fail validation
// are skipped and reported by index in skipped. When a word appears more
// than once the first record wins.
func Decode(r io.Reader) (entries []*domain.WordEntry, skipped []int, err error) {
	var records []domain.SeedRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, nil, fmt.Errorf("failed to decode seed records: %w", err)
	}

	for i, rec := range records {
		entry, err := rec.Entry()
		if err != nil {
			skipped = append(skipped, i)
			continue
		}
		entries = append(entries, entry)
	}

	entries = lo.UniqBy(entries, func(e *domain.WordEntry) string { return e.Text })
	return entries, skipped, nil
}

// Result summarizes a seeding run.
type Result struct {
	// Ran is false when seeding was skipped.
	Ran      bool
	Offered  int
	Inserted int
	Skipped  int
}

// Seeder applies the bundled word list.
type Seeder struct {
	db     store.TxBeginner
	words  store.WordStore
	fields store.SessionFieldStore
	logger *slog.Logger
}

// NewSeeder creates a Seeder. It panics on nil dependencies.
func NewSeeder(db store.TxBeginner, words store.WordStore, fields store.SessionFieldStore, logger *slog.Logger) *Seeder {
	if db == nil {
		panic("db cannot be nil")
	}
	if words == nil {
		panic("words cannot be nil")
	}
	if fields == nil {
		panic("fields cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Seeder{
		db:     db,
		words:  words,
		fields: fields,
		logger: logger.With(slog.String("component", "seeder")),
	}
}

// FirstRun seeds from the file at path unless the first-launch flag is
// already set. Words are only inserted into an empty store; the flag is set
// either way, in the same transaction.
func (s *Seeder) FirstRun(ctx context.Context, path string) (Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	done, err := s.firstLaunchDone(ctx)
	if err != nil {
		return Result{}, err
	}
	if done {
		log.Debug("first launch already done, skipping seed")
		return Result{}, nil
	}

	entries, skipped, err := s.readFile(path)
	if err != nil {
		return Result{}, err
	}

	result := Result{Ran: true, Offered: len(entries), Skipped: len(skipped)}
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		words := s.words.WithTx(tx)

		empty, err := words.IsEmpty(ctx)
		if err != nil {
			return err
		}
		if empty {
			if result.Inserted, err = words.InsertIfAbsent(ctx, entries); err != nil {
				return err
			}
		}
		return s.fields.WithTx(tx).Set(ctx, domain.FieldFirstLaunchDone, firstLaunchDoneValue)
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to seed words: %w", err)
	}

	log.Info("first launch seeding finished",
		slog.String("path", path),
		slog.Int("offered", result.Offered),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

// Apply inserts every word of the file at path that is not yet stored.
// Existing entries keep their flags.
func (s *Seeder) Apply(ctx context.Context, path string) (Result, error) {
	entries, skipped, err := s.readFile(path)
	if err != nil {
		return Result{}, err
	}

	result := Result{Ran: true, Offered: len(entries), Skipped: len(skipped)}
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		result.Inserted, err = s.words.WithTx(tx).InsertIfAbsent(ctx, entries)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to seed words: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("seed applied",
		slog.String("path", path),
		slog.Int("offered", result.Offered),
		slog.Int("inserted", result.Inserted))
	return result, nil
}

func (s *Seeder) firstLaunchDone(ctx context.Context) (bool, error) {
	value, ok, err := s.fields.Get(ctx, domain.FieldFirstLaunchDone)
	if err != nil {
		return false, fmt.Errorf("failed to read first launch flag: %w", err)
	}
	return ok && value == firstLaunchDoneValue, nil
}

func (s *Seeder) readFile(path string) ([]*domain.WordEntry, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, skipped, err := Decode(f)
	if err != nil {
		return nil, nil, err
	}
	if len(skipped) > 0 {
		s.logger.Warn("skipped invalid seed records",
			slog.String("path", path),
			slog.Any("indexes", skipped))
	}
	return entries, skipped, nil
}
