package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/vocab-drill/internal/api/middleware"
)

// NewRouter wires the drill endpoints and the standard middleware.
func NewRouter(h *DrillHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewTraceMiddleware(logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/progress", h.GetProgress)
		r.Get("/tiers/{tier}/progress", h.GetTierProgress)
		r.Get("/errors", h.GetErrors)

		r.Route("/session", func(r chi.Router) {
			r.Post("/", h.StartSession)
			r.Get("/", h.GetSession)
			r.Get("/prompt", h.GetPrompt)
			r.Post("/answer", h.SubmitAnswer)
			r.Post("/suspend", h.SuspendSession)
		})
	})

	return r
}
