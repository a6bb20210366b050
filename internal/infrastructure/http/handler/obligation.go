package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pedrovi35/fiscalapp/internal/application/obligation"
	"github.com/pedrovi35/fiscalapp/internal/calendar"
	"github.com/pedrovi35/fiscalapp/internal/domain"
	"github.com/pedrovi35/fiscalapp/internal/infrastructure/http/response"
)

// Obligations due within this many days are listed when the caller gives no
// explicit range.
const defaultListWindowDays = 30

// ObligationRequest is the request body for create and update.
type ObligationRequest struct {
	Name                 string  `json:"name"`
	Kind                 string  `json:"kind"`
	Description          string  `json:"description"`
	ClientID             *string `json:"client_id"`
	ResponsibleID        *string `json:"responsible_id"`
	DueDate              string  `json:"due_date"`
	Recurrence           string  `json:"recurrence"`
	CustomIntervalDays   *int    `json:"custom_interval_days"`
	RecurrenceDayOfMonth *int    `json:"recurrence_day_of_month"`
	AdjustForWeekends    *bool   `json:"adjust_for_weekends"`
	AdjustForHolidays    *bool   `json:"adjust_for_holidays"`
}

var validKinds = map[domain.ObligationKind]bool{
	domain.KindTax:         true,
	domain.KindInstallment: true,
	domain.KindDeclaration: true,
	domain.KindDocument:    true,
	domain.KindOther:       true,
}

var validRecurrences = map[domain.RecurrenceKind]bool{
	domain.RecurrenceNone:       true,
	domain.RecurrenceMonthly:    true,
	domain.RecurrenceQuarterly:  true,
	domain.RecurrenceSemiannual: true,
	domain.RecurrenceAnnual:     true,
	domain.RecurrenceCustom:     true,
}

// validate checks the request fields and returns the parsed due date.
func (req *ObligationRequest) validate(w http.ResponseWriter) (time.Time, bool) {
	if req.Name == "" {
		response.ValidationError(w, "name", "required field missing")
		return time.Time{}, false
	}
	if !validKinds[domain.ObligationKind(req.Kind)] {
		response.ValidationError(w, "kind", "invalid obligation kind")
		return time.Time{}, false
	}
	if req.Recurrence != "" && !validRecurrences[domain.RecurrenceKind(req.Recurrence)] {
		response.ValidationError(w, "recurrence", "invalid recurrence policy")
		return time.Time{}, false
	}
	if domain.RecurrenceKind(req.Recurrence) == domain.RecurrenceCustom {
		if req.CustomIntervalDays == nil || *req.CustomIntervalDays <= 0 {
			response.ValidationError(w, "custom_interval_days", "must be positive for CUSTOM recurrence")
			return time.Time{}, false
		}
	}
	if req.RecurrenceDayOfMonth != nil && (*req.RecurrenceDayOfMonth < 1 || *req.RecurrenceDayOfMonth > 31) {
		response.ValidationError(w, "recurrence_day_of_month", "must be between 1 and 31")
		return time.Time{}, false
	}

	dueDate, err := parseDateOnly(req.DueDate)
	if err != nil {
		response.ValidationError(w, "due_date", "expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return dueDate, true
}

// CreateObligation handles POST /v1/obligations.
func (h *ObligationHandler) CreateObligation(w http.ResponseWriter, r *http.Request) {
	var req ObligationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	dueDate, ok := req.validate(w)
	if !ok {
		return
	}

	created, err := h.obligations.Create(r.Context(), obligation.CreateParams{
		Name:                 req.Name,
		Kind:                 domain.ObligationKind(req.Kind),
		Description:          req.Description,
		ClientID:             req.ClientID,
		ResponsibleID:        req.ResponsibleID,
		DueDate:              dueDate,
		Recurrence:           domain.RecurrenceKind(req.Recurrence),
		CustomIntervalDays:   req.CustomIntervalDays,
		RecurrenceDayOfMonth: req.RecurrenceDayOfMonth,
		AdjustForWeekends:    req.AdjustForWeekends,
		AdjustForHolidays:    req.AdjustForHolidays,
		Editor:               editorFrom(r),
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create obligation via HTTP",
			"name", req.Name, "error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "obligation created via HTTP", "obligation_id", created.ID)
	response.Created(w, MapObligationToDTO(created))
}

// GetObligation handles GET /v1/obligations/{obligation_id}.
func (h *ObligationHandler) GetObligation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "obligation_id")

	o, err := h.obligations.Get(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", `"`+o.Etag()+`"`)
	response.OK(w, MapObligationToDTO(o))
}

// UpdateObligation handles PUT /v1/obligations/{obligation_id}.
func (h *ObligationHandler) UpdateObligation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "obligation_id")

	var req ObligationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	dueDate, ok := req.validate(w)
	if !ok {
		return
	}

	// If-Match lets clients assert the version their edit was based on. The
	// storage-level version check still guards the write itself.
	if match := r.Header.Get("If-Match"); match != "" {
		current, err := h.obligations.Get(r.Context(), id)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		if strings.Trim(match, `"`) != current.Etag() {
			response.Error(w, "PRECONDITION_FAILED", "obligation changed since read", http.StatusPreconditionFailed)
			return
		}
	}

	updated, err := h.obligations.Update(r.Context(), id, obligation.UpdateParams{
		Name:                 req.Name,
		Kind:                 domain.ObligationKind(req.Kind),
		Description:          req.Description,
		ClientID:             req.ClientID,
		ResponsibleID:        req.ResponsibleID,
		DueDate:              dueDate,
		Recurrence:           domain.RecurrenceKind(req.Recurrence),
		CustomIntervalDays:   req.CustomIntervalDays,
		RecurrenceDayOfMonth: req.RecurrenceDayOfMonth,
		AdjustForWeekends:    req.AdjustForWeekends,
		AdjustForHolidays:    req.AdjustForHolidays,
		Editor:               editorFrom(r),
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to update obligation via HTTP",
			"obligation_id", id, "error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapObligationToDTO(updated))
}

// DeactivateObligation handles DELETE /v1/obligations/{obligation_id}.
// Obligations are soft-deleted: they drop out of listings and batch passes
// but the record and its audit trail remain.
func (h *ObligationHandler) DeactivateObligation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "obligation_id")

	if err := h.obligations.Deactivate(r.Context(), id, editorFrom(r)); err != nil {
		slog.ErrorContext(r.Context(), "failed to deactivate obligation via HTTP",
			"obligation_id", id, "error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.NoContent(w)
}

// CompleteObligation handles POST /v1/obligations/{obligation_id}/complete.
func (h *ObligationHandler) CompleteObligation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "obligation_id")

	completed, err := h.obligations.Complete(r.Context(), id, editorFrom(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to complete obligation via HTTP",
			"obligation_id", id, "error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapObligationToDTO(completed))
}

// GenerateNext handles POST /v1/obligations/{obligation_id}/generate, the
// manual counterpart of the daily batch pass.
func (h *ObligationHandler) GenerateNext(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "obligation_id")

	generated, err := h.obligations.GenerateNow(r.Context(), id, editorFrom(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to generate occurrence via HTTP",
			"obligation_id", id, "error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "occurrence generated via HTTP",
		"obligation_id", id, "generated_id", generated.ID)
	response.Created(w, MapObligationToDTO(generated))
}

// ListObligations handles GET /v1/obligations. Optional "from" and "until"
// query parameters (YYYY-MM-DD, inclusive) bound the due-date range; absent,
// the window runs from today through the next 30 days.
func (h *ObligationHandler) ListObligations(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	from := calendar.Date(now.Year(), now.Month(), now.Day())
	until := from.AddDate(0, 0, defaultListWindowDays)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := parseDateOnly(v)
		if err != nil {
			response.ValidationError(w, "from", "expected YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("until"); v != "" {
		parsed, err := parseDateOnly(v)
		if err != nil {
			response.ValidationError(w, "until", "expected YYYY-MM-DD")
			return
		}
		until = parsed
	}
	if until.Before(from) {
		response.ValidationError(w, "until", "must not be before from")
		return
	}

	obligations, err := h.obligations.ListDueBetween(r.Context(), from, until)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	dtos := make([]ObligationDTO, len(obligations))
	for i, o := range obligations {
		dtos[i] = MapObligationToDTO(o)
	}

	response.OK(w, map[string]any{"obligations": dtos})
}

// ListHistory handles GET /v1/obligations/{obligation_id}/history.
func (h *ObligationHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "obligation_id")

	records, err := h.history.List(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	dtos := make([]ChangeRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = MapChangeToDTO(rec)
	}

	response.OK(w, map[string]any{"changes": dtos})
}

// GetStats handles GET /v1/stats.
func (h *ObligationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	today := calendar.Date(now.Year(), now.Month(), now.Day())

	open, err := h.stats.CountByCompleted(r.Context(), false)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	completed, err := h.stats.CountByCompleted(r.Context(), true)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	overdue, err := h.stats.CountOverdue(r.Context(), today)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, StatsDTO{Open: open, Completed: completed, Overdue: overdue})
}
