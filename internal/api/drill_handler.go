package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/vocab-drill/internal/api/shared"
	"github.com/phrazzld/vocab-drill/internal/config"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/service/drill"
	"github.com/phrazzld/vocab-drill/internal/task"
)

// DrillHandler serves the drill endpoints. The store holds one learner's
// data, so the handler keeps a single active session; starting a new one
// suspends the previous session.
type DrillHandler struct {
	engine     *drill.Engine
	dispatcher *task.Dispatcher
	cfg        config.EngineConfig
	logger     *slog.Logger

	mu      sync.Mutex
	session *drill.Session
}

// NewDrillHandler creates a DrillHandler. The dispatcher must be started.
func NewDrillHandler(engine *drill.Engine, dispatcher *task.Dispatcher, cfg config.EngineConfig, logger *slog.Logger) *DrillHandler {
	if engine == nil {
		panic("engine cannot be nil")
	}
	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DrillHandler{
		engine:     engine,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "drill_handler")),
	}
}

func (h *DrillHandler) activeSession() *drill.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

func (h *DrillHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// StartSession handles POST /api/session.
func (h *DrillHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	mode, err := domain.ParseSessionMode(req.Mode)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ctx := r.Context()
	session := h.engine.NewSession()
	if mode == domain.ModeErrorCorrection {
		err = session.LoadErrorCorrection(ctx)
	} else {
		tier := strings.TrimSpace(req.Tier)
		if tier == "" {
			tier = h.cfg.DefaultTier
		}
		err = session.Load(ctx, tier)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.mu.Lock()
	previous := h.session
	h.session = session
	h.mu.Unlock()

	if previous != nil {
		if err := previous.Suspend(ctx); err != nil {
			logger.FromContextOrDefault(ctx, h.logger).Warn("failed to suspend previous session",
				slog.String("error", err.Error()))
		}
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session.State()))
}

// GetSession handles GET /api/session.
func (h *DrillHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := h.activeSession()
	if session == nil {
		h.respondError(w, r, drill.ErrSessionNotLoaded)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session.State()))
}

// GetPrompt handles GET /api/session/prompt.
func (h *DrillHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	session := h.activeSession()
	if session == nil {
		h.respondError(w, r, drill.ErrSessionNotLoaded)
		return
	}

	prompt, err := await(r.Context(), func() (<-chan task.Result[*drill.Prompt], error) {
		return h.dispatcher.Prompt(r.Context(), session)
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, prompt)
}

// SubmitAnswer handles POST /api/session/answer.
func (h *DrillHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	session := h.activeSession()
	if session == nil {
		h.respondError(w, r, drill.ErrSessionNotLoaded)
		return
	}

	outcome, err := await(r.Context(), func() (<-chan task.Result[*drill.Outcome], error) {
		return h.dispatcher.Answer(r.Context(), session, req.Marker, req.Translation)
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}

// SuspendSession handles POST /api/session/suspend. Without an active
// session it does nothing.
func (h *DrillHandler) SuspendSession(w http.ResponseWriter, r *http.Request) {
	session := h.activeSession()
	if session != nil {
		_, err := await(r.Context(), func() (<-chan task.Result[struct{}], error) {
			return h.dispatcher.Suspend(r.Context(), session)
		})
		if err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTierProgress handles GET /api/tiers/{tier}/progress.
func (h *DrillHandler) GetTierProgress(w http.ResponseWriter, r *http.Request) {
	tier := strings.TrimSpace(chi.URLParam(r, "tier"))
	if tier == "" {
		h.respondError(w, r, domain.ErrEmptyTierName)
		return
	}

	progress, err := h.progress(r.Context(), []string{tier})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(progress[0]))
}

// GetProgress handles GET /api/progress. Tiers are taken from repeated
// tier query parameters and default to the configured tier list.
func (h *DrillHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	tiers := r.URL.Query()["tier"]
	if len(tiers) == 0 {
		tiers = h.cfg.Tiers
	}
	for _, tier := range tiers {
		if strings.TrimSpace(tier) == "" {
			h.respondError(w, r, domain.ErrEmptyTierName)
			return
		}
	}

	progress, err := h.progress(r.Context(), tiers)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]ProgressResponse, 0, len(progress))
	for _, p := range progress {
		out = append(out, progressToResponse(p))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

func (h *DrillHandler) progress(ctx context.Context, tiers []string) ([]domain.Progress, error) {
	return await(ctx, func() (<-chan task.Result[[]domain.Progress], error) {
		return h.dispatcher.Progress(ctx, h.engine, tiers)
	})
}

// GetErrors handles GET /api/errors.
func (h *DrillHandler) GetErrors(w http.ResponseWriter, r *http.Request) {
	words, err := h.engine.ErrorTracker().List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if words == nil {
		words = []*domain.WordEntry{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ErrorsResponse{Count: len(words), Words: words})
}

// Shutdown suspends the active session.
func (h *DrillHandler) Shutdown(ctx context.Context) error {
	session := h.activeSession()
	if session == nil {
		return nil
	}
	return session.Suspend(ctx)
}

// await submits a request and waits for its result or the request's end.
func await[T any](ctx context.Context, submit func() (<-chan task.Result[T], error)) (T, error) {
	results, err := submit()
	if err != nil {
		var zero T
		return zero, err
	}
	return task.Wait(ctx, results)
}
