// Package handler adapts HTTP requests to obligation service calls.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pedrovi35/fiscalapp/internal/application/history"
	"github.com/pedrovi35/fiscalapp/internal/application/obligation"
	"github.com/pedrovi35/fiscalapp/internal/domain"
)

// StatsProvider supplies aggregate counts for the stats endpoint.
type StatsProvider interface {
	CountByCompleted(ctx context.Context, completed bool) (int64, error)
	CountOverdue(ctx context.Context, today time.Time) (int64, error)
}

// ObligationHandler serves the obligation REST API.
type ObligationHandler struct {
	obligations *obligation.Service
	history     *history.Service
	stats       StatsProvider
	now         func() time.Time
}

// NewObligationHandler creates a new HTTP API handler.
func NewObligationHandler(obligations *obligation.Service, historySvc *history.Service, stats StatsProvider) *ObligationHandler {
	return &ObligationHandler{
		obligations: obligations,
		history:     historySvc,
		stats:       stats,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewRouter mounts all API routes. Both production code and tests use this
// function so routing behavior stays identical.
func NewRouter(h *ObligationHandler) http.Handler {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Route("/obligations", func(r chi.Router) {
			r.Post("/", h.CreateObligation)
			r.Get("/", h.ListObligations)

			r.Route("/{obligation_id}", func(r chi.Router) {
				r.Get("/", h.GetObligation)
				r.Put("/", h.UpdateObligation)
				r.Delete("/", h.DeactivateObligation)
				r.Post("/complete", h.CompleteObligation)
				r.Post("/generate", h.GenerateNext)
				r.Get("/history", h.ListHistory)
			})
		})

		r.Get("/stats", h.GetStats)
	})

	return r
}

// editorFrom extracts the acting user from the X-Editor header.
func editorFrom(r *http.Request) string {
	if editor := r.Header.Get("X-Editor"); editor != "" {
		return editor
	}
	return domain.SystemEditor
}
