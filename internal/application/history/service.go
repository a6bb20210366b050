// Package history records the audit trail of obligation changes: per-field
// before/after values with the editor who caused them.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/pedrovi35/fiscalapp/internal/domain"
)

// Repository defines storage operations for change records.
type Repository interface {
	// InsertChange appends a change record to the audit trail.
	InsertChange(ctx context.Context, rec *domain.ChangeRecord) error

	// ListByObligation returns the audit trail for one obligation,
	// newest first.
	ListByObligation(ctx context.Context, obligationID string) ([]*domain.ChangeRecord, error)
}

// Service writes audit-trail entries for obligation lifecycle events.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a history recorder backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// RecordCreation registers that an obligation was created.
func (s *Service) RecordCreation(ctx context.Context, o *domain.Obligation, editor string) error {
	created := "Obrigação criada"
	rec := &domain.ChangeRecord{
		ObligationID: o.ID,
		Field:        "CRIACAO",
		NewValue:     &created,
		Editor:       editor,
		Notes:        fmt.Sprintf("Nova obrigação criada: %s", o.Name),
		ChangedAt:    s.now(),
	}
	return s.repo.InsertChange(ctx, rec)
}

// RecordCompletion registers that an obligation was marked done.
func (s *Service) RecordCompletion(ctx context.Context, o *domain.Obligation, editor string) error {
	oldVal, newVal := "false", "true"
	rec := &domain.ChangeRecord{
		ObligationID: o.ID,
		Field:        "concluida",
		OldValue:     &oldVal,
		NewValue:     &newVal,
		Editor:       editor,
		Notes:        fmt.Sprintf("Obrigação concluída: %s", o.Name),
		ChangedAt:    s.now(),
	}
	return s.repo.InsertChange(ctx, rec)
}

// RecordFieldChanges compares two versions of an obligation and registers one
// entry per changed field. Only user-editable fields are diffed.
func (s *Service) RecordFieldChanges(ctx context.Context, before, after *domain.Obligation, editor string) error {
	at := s.now()

	type diff struct {
		field    string
		old, new string
	}
	var diffs []diff

	if before.Name != after.Name {
		diffs = append(diffs, diff{"nome", before.Name, after.Name})
	}
	if before.Kind != after.Kind {
		diffs = append(diffs, diff{"tipo", string(before.Kind), string(after.Kind)})
	}
	if before.Description != after.Description {
		diffs = append(diffs, diff{"descricao", before.Description, after.Description})
	}
	if !before.DueDate.Equal(after.DueDate) {
		diffs = append(diffs, diff{"dataVencimento", before.DueDate.Format(time.DateOnly), after.DueDate.Format(time.DateOnly)})
	}
	if before.Recurrence != after.Recurrence {
		diffs = append(diffs, diff{"tipoRecorrencia", string(before.Recurrence), string(after.Recurrence)})
	}

	for _, d := range diffs {
		oldVal, newVal := d.old, d.new
		rec := &domain.ChangeRecord{
			ObligationID: before.ID,
			Field:        d.field,
			OldValue:     &oldVal,
			NewValue:     &newVal,
			Editor:       editor,
			ChangedAt:    at,
		}
		if err := s.repo.InsertChange(ctx, rec); err != nil {
			return fmt.Errorf("failed to record change of %s: %w", d.field, err)
		}
	}

	return nil
}

// List returns the audit trail for one obligation, newest first.
func (s *Service) List(ctx context.Context, obligationID string) ([]*domain.ChangeRecord, error) {
	return s.repo.ListByObligation(ctx, obligationID)
}
