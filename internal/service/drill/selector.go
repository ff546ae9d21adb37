package drill

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// Selector draws words from a tier without replacement. When every entry of
// a tier has been drawn, the tier's used flags are reset and a new cycle starts.
type Selector struct {
	db     store.TxBeginner
	words  store.WordStore
	rng    *lockedRand
	group  singleflight.Group
	logger *slog.Logger
}

// Next draws an unused entry of tier uniformly at random and marks it used
// in the same transaction. It returns ErrEmptyTier if the tier has no entries.
//
// Concurrent calls for the same tier share one draw and receive the same
// entry. A started draw runs to completion even if ctx is canceled.
func (s *Selector) Next(ctx context.Context, tier string) (*domain.WordEntry, error) {
	if strings.TrimSpace(tier) == "" {
		return nil, domain.ErrEmptyTierName
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	v, err, shared := s.group.Do(tier, func() (any, error) {
		return s.draw(context.WithoutCancel(ctx), tier)
	})
	if err != nil {
		return nil, err
	}

	entry := *v.(*domain.WordEntry)
	if shared {
		log.Debug("joined in-flight draw",
			slog.String("tier", tier),
			slog.String("word", entry.Text))
	}
	return &entry, nil
}

func (s *Selector) draw(ctx context.Context, tier string) (*domain.WordEntry, error) {
	var drawn *domain.WordEntry
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		drawn, err = s.drawTx(ctx, s.words.WithTx(tx), tier)
		return err
	})
	if err != nil {
		return nil, storeFailure("draw", "failed to draw word", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("drew word",
		slog.String("tier", tier),
		slog.String("word", drawn.Text))
	return drawn, nil
}

// drawTx tries the unused entries in random order until one wins the
// compare-and-set. If none is left the tier is reset once and the draw retried.
func (s *Selector) drawTx(ctx context.Context, words store.WordStore, tier string) (*domain.WordEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for attempt := 0; ; attempt++ {
		texts, err := words.ListUnusedTexts(ctx, tier)
		if err != nil {
			return nil, err
		}

		for _, i := range s.rng.Perm(len(texts)) {
			ok, err := words.MarkUsed(ctx, texts[i])
			if err != nil {
				return nil, err
			}
			if !ok {
				log.Debug("word taken by a concurrent draw", slog.String("word", texts[i]))
				continue
			}
			return words.GetByText(ctx, texts[i])
		}

		total, err := words.CountByTier(ctx, tier)
		if err != nil {
			return nil, err
		}
		if total == 0 {
			return nil, ErrEmptyTier
		}
		if attempt > 0 {
			return nil, fmt.Errorf("tier %q still exhausted after reset", tier)
		}

		reset, err := words.ResetUsed(ctx, tier)
		if err != nil {
			return nil, err
		}
		log.Info("tier exhausted, starting new cycle",
			slog.String("tier", tier),
			slog.Int("reset", reset))
	}
}
