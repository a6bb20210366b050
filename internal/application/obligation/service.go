package obligation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pedrovi35/fiscalapp/internal/calendar"
	"github.com/pedrovi35/fiscalapp/internal/domain"
	"github.com/pedrovi35/fiscalapp/internal/notification"
	"github.com/pedrovi35/fiscalapp/internal/recurrence"
)

// HistoryRecorder is the audit-trail collaborator invoked with before/after
// field values on obligation changes.
type HistoryRecorder interface {
	RecordCreation(ctx context.Context, o *domain.Obligation, editor string) error
	RecordCompletion(ctx context.Context, o *domain.Obligation, editor string) error
	RecordFieldChanges(ctx context.Context, before, after *domain.Obligation, editor string) error
}

// Service is the facade for obligation lifecycle operations. Errors from
// manual operations propagate to the caller unchanged; only the batch driver
// swallows per-item failures.
type Service struct {
	repo      Repository
	history   HistoryRecorder
	notifier  notification.Notifier
	generator *Generator
	now       func() time.Time
}

// ServiceOption is a functional option for configuring Service.
type ServiceOption func(*Service)

// WithServiceClock overrides the clock, letting tests pin "today".
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the obligation service.
func NewService(repo Repository, history HistoryRecorder, notifier notification.Notifier, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		history:  history,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.generator = NewGenerator(repo, WithClock(s.now))
	return s
}

// CreateParams carries the user-supplied fields for a new obligation.
// Nil adjustment flags default to true.
type CreateParams struct {
	Name                 string
	Kind                 domain.ObligationKind
	Description          string
	ClientID             *string
	ResponsibleID        *string
	DueDate              time.Time
	Recurrence           domain.RecurrenceKind
	CustomIntervalDays   *int
	RecurrenceDayOfMonth *int
	AdjustForWeekends    *bool
	AdjustForHolidays    *bool
	Editor               string
}

// Create registers a new obligation. The due date is adjusted per the
// obligation's policies, and recurring obligations get their first
// generation date anchored at today.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domain.Obligation, error) {
	o := &domain.Obligation{
		Name:                 params.Name,
		Kind:                 params.Kind,
		Description:          params.Description,
		ClientID:             params.ClientID,
		ResponsibleID:        params.ResponsibleID,
		DueDate:              params.DueDate,
		Recurrence:           params.Recurrence,
		CustomIntervalDays:   params.CustomIntervalDays,
		RecurrenceDayOfMonth: params.RecurrenceDayOfMonth,
		AdjustForWeekends:    boolOrTrue(params.AdjustForWeekends),
		AdjustForHolidays:    boolOrTrue(params.AdjustForHolidays),
		Active:               true,
		LastEditor:           params.Editor,
	}
	if o.Recurrence == "" {
		o.Recurrence = domain.RecurrenceNone
	}

	o.DueDate = calendar.Adjust(o.DueDate, o.AdjustForWeekends, o.AdjustForHolidays)

	if o.IsRecurring() {
		nextGeneration, err := recurrence.NextGenerationDate(o, s.now())
		if err != nil {
			return nil, err
		}
		o.NextGenerationDate = &nextGeneration
	}

	saved, err := s.repo.Save(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to create obligation: %w", err)
	}

	if err := s.history.RecordCreation(ctx, saved, params.Editor); err != nil {
		slog.ErrorContext(ctx, "failed to record obligation creation", "obligation_id", saved.ID, "error", err)
	}
	s.notifier.NotifyCreated(ctx, saved.ID, saved.Name, params.Editor)

	return saved, nil
}

// UpdateParams carries the user-supplied fields for an obligation update.
type UpdateParams struct {
	Name                 string
	Kind                 domain.ObligationKind
	Description          string
	ClientID             *string
	ResponsibleID        *string
	DueDate              time.Time
	Recurrence           domain.RecurrenceKind
	CustomIntervalDays   *int
	RecurrenceDayOfMonth *int
	AdjustForWeekends    *bool
	AdjustForHolidays    *bool
	Editor               string
}

// Update replaces the user-editable fields of an obligation, recording each
// field change in the audit trail. Switching recurrence on computes a fresh
// generation date; switching it off clears the marker.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*domain.Obligation, error) {
	before, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *before
	updated.Name = params.Name
	updated.Kind = params.Kind
	updated.Description = params.Description
	updated.ClientID = params.ClientID
	updated.ResponsibleID = params.ResponsibleID
	updated.DueDate = params.DueDate
	updated.Recurrence = params.Recurrence
	updated.CustomIntervalDays = params.CustomIntervalDays
	updated.RecurrenceDayOfMonth = params.RecurrenceDayOfMonth
	updated.AdjustForWeekends = boolOrTrue(params.AdjustForWeekends)
	updated.AdjustForHolidays = boolOrTrue(params.AdjustForHolidays)
	updated.LastEditor = params.Editor

	updated.DueDate = calendar.Adjust(updated.DueDate, updated.AdjustForWeekends, updated.AdjustForHolidays)

	switch {
	case !updated.IsRecurring():
		updated.NextGenerationDate = nil
	case before.Recurrence != updated.Recurrence || updated.NextGenerationDate == nil:
		nextGeneration, err := recurrence.NextGenerationDate(&updated, s.now())
		if err != nil {
			return nil, err
		}
		updated.NextGenerationDate = &nextGeneration
	}

	if err := s.history.RecordFieldChanges(ctx, before, &updated, params.Editor); err != nil {
		slog.ErrorContext(ctx, "failed to record obligation changes", "obligation_id", id, "error", err)
	}

	saved, err := s.repo.Save(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update obligation: %w", err)
	}

	s.notifier.NotifyUpdated(ctx, saved.ID, saved.Name, params.Editor)
	return saved, nil
}

// Complete marks an obligation done. Completion does not block recurrence:
// a completed obligation still spawns its next occurrence when due.
func (s *Service) Complete(ctx context.Context, id, editor string) (*domain.Obligation, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	today := calendar.Date(s.now().Year(), s.now().Month(), s.now().Day())
	updated := *o
	updated.Completed = true
	updated.CompletedOn = &today
	updated.LastEditor = editor

	saved, err := s.repo.Save(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to complete obligation: %w", err)
	}

	if err := s.history.RecordCompletion(ctx, saved, editor); err != nil {
		slog.ErrorContext(ctx, "failed to record obligation completion", "obligation_id", id, "error", err)
	}
	s.notifier.NotifyCompleted(ctx, saved.ID, saved.Name, editor)

	return saved, nil
}

// Deactivate soft-deletes an obligation; it no longer participates in batch
// generation or alerts. The record itself is never deleted.
func (s *Service) Deactivate(ctx context.Context, id, editor string) error {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	updated := *o
	updated.Active = false
	updated.LastEditor = editor

	if _, err := s.repo.Save(ctx, &updated); err != nil {
		return fmt.Errorf("failed to deactivate obligation: %w", err)
	}

	s.notifier.NotifyDeleted(ctx, o.ID, o.Name, editor)
	return nil
}

// Get retrieves one obligation by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Obligation, error) {
	return s.repo.FindByID(ctx, id)
}

// ListDueBetween returns open obligations due in the inclusive range.
func (s *Service) ListDueBetween(ctx context.Context, from, until time.Time) ([]*domain.Obligation, error) {
	return s.repo.FindDueBetween(ctx, from, until)
}

// GenerateNow manually spawns the next occurrence of a recurring obligation,
// on behalf of the given editor. Unlike the batch path, errors propagate to
// the caller unchanged.
func (s *Service) GenerateNow(ctx context.Context, id, editor string) (*domain.Obligation, error) {
	generated, err := s.generator.GenerateNext(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.history.RecordCreation(ctx, generated, editor); err != nil {
		slog.ErrorContext(ctx, "failed to record occurrence creation", "obligation_id", generated.ID, "error", err)
	}
	s.notifier.NotifyCreated(ctx, generated.ID, generated.Name, editor)

	return generated, nil
}

func boolOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
