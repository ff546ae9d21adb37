package drill

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/events"
	"github.com/phrazzld/vocab-drill/internal/testutils"
)

// recordingHandler keeps every event it receives.
type recordingHandler struct {
	mu     sync.Mutex
	events []*events.Event
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) ofType(eventType string) []*events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []*events.Event
	for _, e := range h.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	stores   testutils.TestStores
	engine   *Engine
	recorder *recordingHandler
}

func newFixture(t *testing.T, words ...*domain.WordEntry) *fixture {
	t.Helper()

	stores := testutils.NewSQLiteStores(t)
	if len(words) > 0 {
		testutils.MustInsertWords(t, stores.Words, words...)
	}

	recorder := &recordingHandler{}
	emitter := events.NewInMemoryEventEmitter(testutils.DiscardLogger())
	emitter.RegisterHandler(recorder)

	engine := NewEngine(stores.DB, stores.Words, stores.Fields, testutils.DiscardLogger(),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithEmitter(emitter),
	)

	return &fixture{stores: stores, engine: engine, recorder: recorder}
}

// hundGehen is the two-word A1 tier used throughout the tests.
func hundGehen(t *testing.T) []*domain.WordEntry {
	return []*domain.WordEntry{
		testutils.Word(t, "der", "Hund", "dog", "A1"),
		testutils.Word(t, "", "gehen", "to go", "A1"),
	}
}

// tierOf builds n entries of tier with distinct translations.
func tierOf(t *testing.T, tier string, n int) []*domain.WordEntry {
	t.Helper()

	out := make([]*domain.WordEntry, 0, n)
	for i := range n {
		out = append(out, testutils.Word(t, "das",
			fmt.Sprintf("%s-Wort-%d", tier, i),
			fmt.Sprintf("%s word %d", tier, i),
			tier))
	}
	return out
}

func (f *fixture) usedCount(t *testing.T, tier string) int {
	t.Helper()

	total, err := f.stores.Words.CountByTier(context.Background(), tier)
	require.NoError(t, err)
	unused, err := f.stores.Words.ListUnusedTexts(context.Background(), tier)
	require.NoError(t, err)
	return total - len(unused)
}
