package drill

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// OptionCount is the number of answer options of every prompt.
const OptionCount = 4

// FillerOption stands in for a distractor when the tier has no other translation.
const FillerOption = "-"

// Distractors builds the answer options of a prompt from translations of
// the same tier.
type Distractors struct {
	words  store.WordStore
	rng    *lockedRand
	logger *slog.Logger
}

// Options returns OptionCount translations in random order, exactly one of
// which is entry.Translation.
//
// Distractors are distinct translations of other entries of tier, excluding
// any that equal the correct one. When the tier offers fewer than
// OptionCount-1 of them the available ones repeat, and a tier without any
// yields FillerOption. Other tiers are never consulted.
func (d *Distractors) Options(ctx context.Context, entry *domain.WordEntry, tier string) ([]string, error) {
	if entry == nil {
		return nil, errors.New("entry is required")
	}

	pool, err := d.words.ListTranslations(ctx, tier, entry.Text)
	if err != nil {
		return nil, storeFailure("options", "failed to list translations", err)
	}

	options, degenerate := buildOptions(entry.Translation, pool, d.rng)
	if degenerate {
		logger.FromContextOrDefault(ctx, d.logger).Debug("tier too small for distinct distractors",
			slog.String("tier", tier),
			slog.String("word", entry.Text),
			slog.Int("available", len(lo.Uniq(lo.Without(pool, entry.Translation)))))
	}
	return options, nil
}

// buildOptions reports degenerate when distractors had to repeat.
func buildOptions(correct string, pool []string, rng *lockedRand) ([]string, bool) {
	candidates := lo.Uniq(lo.Without(pool, correct))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	filler := FillerOption
	if filler == correct {
		filler = ""
	}

	options := make([]string, 0, OptionCount)
	for i := 0; len(options) < OptionCount-1; i++ {
		if len(candidates) == 0 {
			options = append(options, filler)
			continue
		}
		options = append(options, candidates[i%len(candidates)])
	}
	options = append(options, correct)

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return options, len(candidates) < OptionCount-1
}
