package drill

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/events"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// progressConcurrency bounds the parallel store reads of ProgressAll.
const progressConcurrency = 4

// Engine wires the drill components to one word store and one session field store.
type Engine struct {
	db      store.TxBeginner
	words   store.WordStore
	fields  store.SessionFieldStore
	emitter events.EventEmitter
	rng     *lockedRand
	logger  *slog.Logger

	selector    *Selector
	distractors *Distractors
	errors      *ErrorTracker
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand makes every random choice of the engine come from r.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = newLockedRand(r)
	}
}

// WithEmitter sets where error count and progress notifications go.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(e *Engine) {
		if emitter != nil {
			e.emitter = emitter
		}
	}
}

// NewEngine creates the drill engine. db starts the transactions that the
// stores join through WithTx; it is usually the *sql.DB the stores were built on.
func NewEngine(
	db store.TxBeginner,
	words store.WordStore,
	fields store.SessionFieldStore,
	logger *slog.Logger,
	opts ...Option,
) *Engine {
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

	e := &Engine{
		db:      db,
		words:   words,
		fields:  fields,
		emitter: events.NopEmitter{},
		logger:  logger.With(slog.String("component", "drill_engine")),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = newLockedRand(nil)
	}

	e.selector = &Selector{
		db:     db,
		words:  words,
		rng:    e.rng,
		logger: logger.With(slog.String("component", "selector")),
	}
	e.distractors = &Distractors{
		words:  words,
		rng:    e.rng,
		logger: logger.With(slog.String("component", "distractors")),
	}
	e.errors = &ErrorTracker{
		db:      db,
		words:   words,
		emitter: e.emitter,
		rng:     e.rng,
		logger:  logger.With(slog.String("component", "error_tracker")),
	}

	return e
}

// Selector returns the engine's word selector.
func (e *Engine) Selector() *Selector { return e.selector }

// Distractors returns the engine's answer option generator.
func (e *Engine) Distractors() *Distractors { return e.distractors }

// ErrorTracker returns the engine's error tracker.
func (e *Engine) ErrorTracker() *ErrorTracker { return e.errors }

// Progress returns the tier's persisted completed counter and its live entry count.
// The two are read independently and may be momentarily inconsistent.
func (e *Engine) Progress(ctx context.Context, tier string) (domain.Progress, error) {
	completed, err := e.readCounter(ctx, e.fields, tier)
	if err != nil {
		return domain.Progress{}, storeFailure("progress", "failed to read completed count", err)
	}

	total, err := e.words.CountByTier(ctx, tier)
	if err != nil {
		return domain.Progress{}, storeFailure("progress", "failed to count tier", err)
	}

	return domain.Progress{Tier: tier, Completed: completed, Total: total}, nil
}

// ProgressAll returns Progress for each tier, in the given order.
func (e *Engine) ProgressAll(ctx context.Context, tiers []string) ([]domain.Progress, error) {
	out := make([]domain.Progress, len(tiers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(progressConcurrency)
	for i, tier := range tiers {
		g.Go(func() error {
			p, err := e.Progress(gctx, tier)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// readCounter returns the persisted completed count of tier. A missing or
// unparsable value counts as zero.
func (e *Engine) readCounter(ctx context.Context, fields store.SessionFieldStore, tier string) (int, error) {
	key := domain.CompletedCountField(tier)
	raw, ok, err := fields.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		logger.FromContextOrDefault(ctx, e.logger).Warn("ignoring malformed completed count",
			slog.String("field", key),
			slog.String("value", raw))
		return 0, nil
	}
	return n, nil
}

// emit sends an event and only logs failures; notifications never fail an operation.
func emit(ctx context.Context, emitter events.EventEmitter, log *slog.Logger, eventType string, payload any) {
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
