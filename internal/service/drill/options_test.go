package drill

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocab-drill/internal/testutils"
)

func assertOptions(t *testing.T, options []string, correct string) {
	t.Helper()

	require.Len(t, options, OptionCount)
	assert.Equal(t, 1, lo.Count(options, correct), "correct translation must appear exactly once: %v", options)
}

func TestDistractors_AlwaysFourWithCorrectOnce(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 9} {
		t.Run(fmt.Sprintf("tier size %d", n), func(t *testing.T) {
			words := tierOf(t, "A1", n)
			f := newFixture(t, append(words, tierOf(t, "B1", 5)...)...)

			for _, entry := range words {
				options, err := f.engine.Distractors().Options(context.Background(), entry, "A1")
				require.NoError(t, err)
				assertOptions(t, options, entry.Translation)

				for _, o := range options {
					assert.NotContains(t, o, "B1", "distractors never come from another tier")
				}
				if n >= OptionCount {
					assert.Len(t, lo.Uniq(options), OptionCount, "large tiers yield distinct options")
				}
			}
		})
	}
}

func TestDistractors_HundScenario(t *testing.T) {
	f := newFixture(t, hundGehen(t)...)
	hund, err := f.stores.Words.GetByText(context.Background(), "Hund")
	require.NoError(t, err)

	options, err := f.engine.Distractors().Options(context.Background(), hund, "A1")
	require.NoError(t, err)

	assertOptions(t, options, "dog")
	assert.Contains(t, options, "to go")
	assert.ElementsMatch(t, []string{"dog", "to go", "to go", "to go"}, options,
		"a two-word tier repeats its only distractor")
}

func TestDistractors_SingleEntryTierUsesFiller(t *testing.T) {
	f := newFixture(t, testutils.Word(t, "der", "Hund", "dog", "A1"))
	hund, err := f.stores.Words.GetByText(context.Background(), "Hund")
	require.NoError(t, err)

	options, err := f.engine.Distractors().Options(context.Background(), hund, "A1")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"dog", FillerOption, FillerOption, FillerOption}, options)
}

func TestDistractors_SynonymsAreNotDistractors(t *testing.T) {
	f := newFixture(t,
		testutils.Word(t, "", "schnell", "fast", "A1"),
		testutils.Word(t, "", "rasch", "fast", "A1"),
		testutils.Word(t, "", "langsam", "slow", "A1"),
	)
	schnell, err := f.stores.Words.GetByText(context.Background(), "schnell")
	require.NoError(t, err)

	options, err := f.engine.Distractors().Options(context.Background(), schnell, "A1")
	require.NoError(t, err)

	assertOptions(t, options, "fast")
	assert.Equal(t, 3, lo.Count(options, "slow"))
}

func TestDistractors_NilEntry(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Distractors().Options(context.Background(), nil, "A1")
	assert.Error(t, err)
}

func TestBuildOptions_CorrectPositionVaries(t *testing.T) {
	rng := newLockedRand(rand.New(rand.NewPCG(7, 11)))
	pool := []string{"cat", "to go", "house", "tree"}

	positions := make(map[int]int)
	for range 400 {
		options, degenerate := buildOptions("dog", pool, rng)
		assert.False(t, degenerate)
		positions[lo.IndexOf(options, "dog")]++
	}

	for pos := range OptionCount {
		assert.Greater(t, positions[pos], 50, "position %d is rarely used: %v", pos, positions)
	}
}

func TestBuildOptions_DegenerateCases(t *testing.T) {
	rng := newLockedRand(rand.New(rand.NewPCG(3, 5)))

	tests := []struct {
		name       string
		correct    string
		pool       []string
		degenerate bool
	}{
		{name: "empty pool", correct: "dog", pool: nil, degenerate: true},
		{name: "pool of correct only", correct: "dog", pool: []string{"dog", "dog"}, degenerate: true},
		{name: "duplicates collapse", correct: "dog", pool: []string{"cat", "cat", "cat"}, degenerate: true},
		{name: "enough distinct", correct: "dog", pool: []string{"cat", "cow", "eel"}, degenerate: false},
		{name: "filler equal to correct", correct: FillerOption, pool: nil, degenerate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options, degenerate := buildOptions(tt.correct, tt.pool, rng)
			assertOptions(t, options, tt.correct)
			assert.Equal(t, tt.degenerate, degenerate)
		})
	}
}
