package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pedrovi35/fiscalapp/internal/domain"
)

// InsertChange appends a change record to the audit trail.
func (s *Store) InsertChange(ctx context.Context, rec *domain.ChangeRecord) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate change id: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO obligation_changes (id, obligation_id, field, old_value, new_value, editor, notes, changed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id.String(), rec.ObligationID, rec.Field, rec.OldValue, rec.NewValue, rec.Editor, rec.Notes, rec.ChangedAt)
	if err != nil {
		return fmt.Errorf("failed to insert change record: %w", err)
	}
	return nil
}

// ListByObligation returns the audit trail for one obligation, newest first.
func (s *Store) ListByObligation(ctx context.Context, obligationID string) ([]*domain.ChangeRecord, error) {
	if _, err := uuid.Parse(obligationID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidID, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, obligation_id, field, old_value, new_value, editor, notes, changed_at
		 FROM obligation_changes
		 WHERE obligation_id = $1
		 ORDER BY changed_at DESC, id DESC`, obligationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query change records: %w", err)
	}
	defer rows.Close()

	var out []*domain.ChangeRecord
	for rows.Next() {
		var rec domain.ChangeRecord
		if err := rows.Scan(&rec.ID, &rec.ObligationID, &rec.Field, &rec.OldValue, &rec.NewValue,
			&rec.Editor, &rec.Notes, &rec.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change record: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read change records: %w", err)
	}
	return out, nil
}
