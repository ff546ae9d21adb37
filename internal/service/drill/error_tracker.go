package drill

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/events"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// ErrorTracker maintains the set of entries whose latest answer was wrong.
// Every recorded result is followed by an events.TypeErrorCountChanged
// notification carrying the new count.
type ErrorTracker struct {
	db      store.TxBeginner
	words   store.WordStore
	emitter events.EventEmitter
	rng     *lockedRand
	logger  *slog.Logger
}

// RecordResult flags entry as wrong when correct is false and clears the
// flag otherwise. It returns the number of flagged entries afterwards.
func (t *ErrorTracker) RecordResult(ctx context.Context, entry *domain.WordEntry, correct bool) (int, error) {
	if entry == nil {
		return 0, errors.New("entry is required")
	}

	var count int
	err := store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		count, err = t.recordTx(ctx, t.words.WithTx(tx), entry.Text, correct)
		return err
	})
	if err != nil {
		return 0, storeFailure("record_result", "failed to update error flag", err)
	}

	entry.HasError = !correct
	t.notifyCount(ctx, count)
	return count, nil
}

func (t *ErrorTracker) recordTx(ctx context.Context, words store.WordStore, text string, correct bool) (int, error) {
	if err := words.SetError(ctx, text, !correct); err != nil {
		return 0, err
	}
	return words.CountWithError(ctx)
}

func (t *ErrorTracker) notifyCount(ctx context.Context, count int) {
	log := logger.FromContextOrDefault(ctx, t.logger)
	log.Debug("error count changed", slog.Int("count", count))
	emit(ctx, t.emitter, log, events.TypeErrorCountChanged, events.ErrorCountPayload{Count: count})
}

// Next returns a uniformly random flagged entry from any tier, or
// ErrErrorQueueEmpty when nothing is flagged.
func (t *ErrorTracker) Next(ctx context.Context) (*domain.WordEntry, error) {
	flagged, err := t.words.ListWithError(ctx)
	if err != nil {
		return nil, storeFailure("next_error", "failed to list flagged words", err)
	}
	if len(flagged) == 0 {
		return nil, ErrErrorQueueEmpty
	}
	return flagged[t.rng.IntN(len(flagged))], nil
}

// Count returns the number of flagged entries.
func (t *ErrorTracker) Count(ctx context.Context) (int, error) {
	n, err := t.words.CountWithError(ctx)
	if err != nil {
		return 0, storeFailure("error_count", "failed to count flagged words", err)
	}
	return n, nil
}

// List returns every flagged entry ordered by tier and text.
func (t *ErrorTracker) List(ctx context.Context) ([]*domain.WordEntry, error) {
	flagged, err := t.words.ListWithError(ctx)
	if err != nil {
		return nil, storeFailure("list_errors", "failed to list flagged words", err)
	}
	return flagged, nil
}
