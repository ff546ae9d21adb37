package drill

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/events"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/store"
)

// Prompt is what the learner sees for the pending word. It deliberately
// omits the marker and the translation.
type Prompt struct {
	Text           string   `json:"text"`
	Tier           string   `json:"tier"`
	Options        []string `json:"options"`
	MarkerRequired bool     `json:"marker_required"`
}

// Outcome is the result of a recorded answer. Entry is the answered word,
// including its correct marker and translation for result display.
type Outcome struct {
	Correct        bool             `json:"correct"`
	Entry          domain.WordEntry `json:"entry"`
	CompletedCount int              `json:"completed_count"`
	ErrorCount     int              `json:"error_count"`
	// Cleared is set when an error-correction session answered its last
	// flagged word; the session accepts no further prompts.
	Cleared bool `json:"cleared"`
}

// Session is one learner's drill session. Its methods are safe for
// concurrent use and run one at a time.
type Session struct {
	engine *Engine
	logger *slog.Logger

	mu      sync.Mutex
	state   domain.SessionState
	loaded  bool
	cleared bool
	current *domain.WordEntry
	options []string
}

// NewSession creates an unloaded session. Call Load or LoadErrorCorrection first.
func (e *Engine) NewSession() *Session {
	return &Session{
		engine: e,
		logger: e.logger.With(slog.String("component", "session")),
	}
}

// State returns a copy of the session state.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load starts a session on tier. It restores the persisted completed count
// and resumes on the persisted pending word; when that word no longer
// resolves a new one is drawn. Without a pending word the next call to
// Current draws one. It returns ErrEmptyTier for a tier without entries.
func (s *Session) Load(ctx context.Context, tier string) error {
	tier = strings.TrimSpace(tier)
	if tier == "" {
		return domain.ErrEmptyTierName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.engine
	completed, err := e.readCounter(ctx, e.fields, tier)
	if err != nil {
		return storeFailure("load", "failed to read completed count", err)
	}
	total, err := e.words.CountByTier(ctx, tier)
	if err != nil {
		return storeFailure("load", "failed to count tier", err)
	}
	if total == 0 {
		return ErrEmptyTier
	}

	s.reset(domain.SessionState{
		Tier:           tier,
		Mode:           domain.ModeNormal,
		CompletedCount: completed,
		TotalCount:     total,
	})

	return s.restoreCurrent(ctx)
}

// LoadErrorCorrection starts a session that replays flagged words from all
// tiers. It returns ErrErrorQueueEmpty when nothing is flagged.
func (s *Session) LoadErrorCorrection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.engine.errors.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrErrorQueueEmpty
	}

	s.reset(domain.SessionState{
		Mode:       domain.ModeErrorCorrection,
		TotalCount: count,
	})

	return s.restoreCurrent(ctx)
}

func (s *Session) reset(state domain.SessionState) {
	s.state = state
	s.loaded = true
	s.cleared = false
	s.current = nil
	s.options = nil
}

// scope namespaces the persisted pending word.
func (s *Session) scope() string {
	if s.state.Mode == domain.ModeErrorCorrection {
		return domain.ErrorCorrectionScope
	}
	return s.state.Tier
}

// accepts reports whether a resolved pending word still belongs to this session.
func (s *Session) accepts(entry *domain.WordEntry) bool {
	if s.state.Mode == domain.ModeErrorCorrection {
		return entry.HasError
	}
	return entry.Tier == s.state.Tier
}

func (s *Session) restoreCurrent(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	key := domain.CurrentWordKeyField(s.scope())

	text, ok, err := s.engine.fields.Get(ctx, key)
	if err != nil {
		return storeFailure("load", "failed to read pending word", err)
	}

	if !ok || text == "" {
		return nil
	}

	entry, err := s.engine.words.GetByText(ctx, text)
	switch {
	case err == nil && s.accepts(entry):
		s.setCurrent(entry)
		log.Debug("resumed pending word", slog.String("word", text))
		return nil
	case err == nil || errors.Is(err, store.ErrNotFound):
		log.Info("pending word no longer resolves, drawing a new one",
			slog.String("word", text),
			slog.String("mode", string(s.state.Mode)))
		return s.drawLocked(ctx)
	default:
		return storeFailure("load", "failed to resolve pending word", err)
	}
}

func (s *Session) setCurrent(entry *domain.WordEntry) {
	s.current = entry
	s.options = nil
	s.state.CurrentWordKey = entry.Text
}

func (s *Session) clearCurrent() {
	s.current = nil
	s.options = nil
	s.state.CurrentWordKey = ""
}

// drawLocked fetches the next word for the session's mode and persists its key.
func (s *Session) drawLocked(ctx context.Context) error {
	var (
		entry *domain.WordEntry
		err   error
	)
	if s.state.Mode == domain.ModeErrorCorrection {
		entry, err = s.engine.errors.Next(ctx)
	} else {
		entry, err = s.engine.selector.Next(ctx, s.state.Tier)
	}
	if err != nil {
		return err
	}

	if err := s.engine.fields.Set(ctx, domain.CurrentWordKeyField(s.scope()), entry.Text); err != nil {
		return storeFailure("draw", "failed to persist pending word", err)
	}

	s.setCurrent(entry)
	return nil
}

func (s *Session) checkActive() error {
	if !s.loaded {
		return ErrSessionNotLoaded
	}
	if s.cleared {
		return ErrErrorQueueCleared
	}
	return nil
}

// Current returns the prompt for the pending word, drawing one if the
// previous answer cleared it. Repeated calls return the same options in
// the same order until an answer is recorded.
func (s *Session) Current(ctx context.Context) (*Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return nil, err
	}

	if s.current == nil {
		if err := s.drawLocked(ctx); err != nil {
			return nil, err
		}
	}

	if s.options == nil {
		options, err := s.engine.distractors.Options(ctx, s.current, s.current.Tier)
		if err != nil {
			return nil, err
		}
		s.options = options
	}

	return &Prompt{
		Text:           s.current.Text,
		Tier:           s.current.Tier,
		Options:        append([]string(nil), s.options...),
		MarkerRequired: s.current.MarkerRequired(),
	}, nil
}

// Submit evaluates the learner's answer for the pending word and records it.
func (s *Session) Submit(ctx context.Context, marker, translation string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return nil, err
	}
	if s.current == nil {
		return nil, ErrNoPendingWord
	}

	return s.recordLocked(ctx, Evaluate(marker, translation, s.current))
}

// RecordAnswer records a judged answer for the pending word. In one
// transaction it updates the word's error flag, increments the completed
// count when a tier session answered correctly, and clears the pending word.
// On failure nothing changes and the call may be retried.
func (s *Session) RecordAnswer(ctx context.Context, correct bool) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return nil, err
	}
	if s.current == nil {
		return nil, ErrNoPendingWord
	}

	return s.recordLocked(ctx, correct)
}

func (s *Session) recordLocked(ctx context.Context, correct bool) (*Outcome, error) {
	e := s.engine
	log := logger.FromContextOrDefault(ctx, s.logger)
	entry := *s.current
	normal := s.state.Mode == domain.ModeNormal
	scope := s.scope()

	completed := s.state.CompletedCount
	if correct && normal {
		completed++
	}

	var errorCount int
	err := store.RunInTransaction(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		words := e.words.WithTx(tx)
		fields := e.fields.WithTx(tx)

		n, err := e.errors.recordTx(ctx, words, entry.Text, correct)
		if err != nil {
			return err
		}
		errorCount = n

		if correct && normal {
			if err := fields.Set(ctx, domain.CompletedCountField(s.state.Tier), strconv.Itoa(completed)); err != nil {
				return err
			}
		}
		return fields.Delete(ctx, domain.CurrentWordKeyField(scope))
	})
	if err != nil {
		return nil, storeFailure("record_answer", "failed to record answer", err)
	}

	entry.HasError = !correct
	s.state.CompletedCount = completed
	s.clearCurrent()

	outcome := &Outcome{
		Correct:        correct,
		Entry:          entry,
		CompletedCount: completed,
		ErrorCount:     errorCount,
	}

	log.Debug("recorded answer",
		slog.String("word", entry.Text),
		slog.Bool("correct", correct),
		slog.String("mode", string(s.state.Mode)),
		slog.Int("completed", completed),
		slog.Int("error_count", errorCount))

	e.errors.notifyCount(ctx, errorCount)

	if normal {
		if correct {
			emit(ctx, e.emitter, log, events.TypeProgressChanged, events.ProgressPayload{
				Tier:      s.state.Tier,
				Completed: completed,
				Total:     s.state.TotalCount,
			})
		}
		return outcome, nil
	}

	s.state.TotalCount = errorCount
	if correct && errorCount == 0 {
		s.cleared = true
		outcome.Cleared = true
		log.Info("error queue cleared")
		emit(ctx, e.emitter, log, events.TypeErrorQueueCleared, events.ErrorCountPayload{Count: 0})
	}

	return outcome, nil
}

// Suspend writes the completed count and the pending word to durable
// storage. Answers are already persisted as they are recorded, so Suspend
// only guards against writes lost elsewhere. It is idempotent and a no-op
// for a session that was never loaded.
func (s *Session) Suspend(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil
	}

	e := s.engine
	err := store.RunInTransaction(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		fields := e.fields.WithTx(tx)

		if s.state.Mode == domain.ModeNormal {
			if err := fields.Set(ctx, domain.CompletedCountField(s.state.Tier),
				strconv.Itoa(s.state.CompletedCount)); err != nil {
				return err
			}
		}

		key := domain.CurrentWordKeyField(s.scope())
		if s.current != nil {
			return fields.Set(ctx, key, s.current.Text)
		}
		return fields.Delete(ctx, key)
	})
	if err != nil {
		return storeFailure("suspend", "failed to flush session", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("session suspended",
		slog.String("tier", s.state.Tier),
		slog.String("mode", string(s.state.Mode)))
	return nil
}

// Progress returns the progress of tier; see Engine.Progress.
func (s *Session) Progress(ctx context.Context, tier string) (domain.Progress, error) {
	return s.engine.Progress(ctx, tier)
}
