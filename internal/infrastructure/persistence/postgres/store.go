package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pedrovi35/fiscalapp/internal/domain"
)

// Store implements the obligation and history repositories over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const obligationColumns = `id, name, kind, description, client_id, responsible_id,
	due_date, recurrence, custom_interval_days, recurrence_day_of_month,
	adjust_for_weekends, adjust_for_holidays, next_generation_date,
	active, completed, completed_on, created_at, updated_at, last_editor, version`

// FindByID retrieves a single obligation.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Obligation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidID, err)
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE id = $1`, id)

	o, err := scanObligation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrObligationNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	return o, nil
}

// Save inserts the obligation when its ID is empty, otherwise updates it
// with an optimistic version check.
func (s *Store) Save(ctx context.Context, o *domain.Obligation) (*domain.Obligation, error) {
	if o.ID == "" {
		return s.insert(ctx, o)
	}
	return s.update(ctx, o)
}

func (s *Store) insert(ctx context.Context, o *domain.Obligation) (*domain.Obligation, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate obligation id: %w", err)
	}

	now := time.Now().UTC()
	saved := *o
	saved.ID = id.String()
	saved.CreatedAt = now
	saved.UpdatedAt = now
	saved.Version = 1

	_, err = s.pool.Exec(ctx,
		`INSERT INTO obligations (`+obligationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		saved.ID, saved.Name, string(saved.Kind), saved.Description, saved.ClientID, saved.ResponsibleID,
		saved.DueDate, string(saved.Recurrence), saved.CustomIntervalDays, saved.RecurrenceDayOfMonth,
		saved.AdjustForWeekends, saved.AdjustForHolidays, saved.NextGenerationDate,
		saved.Active, saved.Completed, saved.CompletedOn, saved.CreatedAt, saved.UpdatedAt, saved.LastEditor, saved.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to insert obligation: %w", err)
	}

	return &saved, nil
}

func (s *Store) update(ctx context.Context, o *domain.Obligation) (*domain.Obligation, error) {
	if _, err := uuid.Parse(o.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidID, err)
	}

	saved := *o
	saved.UpdatedAt = time.Now().UTC()
	saved.Version = o.Version + 1

	tag, err := s.pool.Exec(ctx,
		`UPDATE obligations SET
			name = $1, kind = $2, description = $3, client_id = $4, responsible_id = $5,
			due_date = $6, recurrence = $7, custom_interval_days = $8, recurrence_day_of_month = $9,
			adjust_for_weekends = $10, adjust_for_holidays = $11, next_generation_date = $12,
			active = $13, completed = $14, completed_on = $15, updated_at = $16, last_editor = $17,
			version = $18
		 WHERE id = $19 AND version = $20`,
		saved.Name, string(saved.Kind), saved.Description, saved.ClientID, saved.ResponsibleID,
		saved.DueDate, string(saved.Recurrence), saved.CustomIntervalDays, saved.RecurrenceDayOfMonth,
		saved.AdjustForWeekends, saved.AdjustForHolidays, saved.NextGenerationDate,
		saved.Active, saved.Completed, saved.CompletedOn, saved.UpdatedAt, saved.LastEditor,
		saved.Version, saved.ID, o.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update obligation: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a concurrent edit.
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM obligations WHERE id = $1)`, o.ID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check obligation existence: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", domain.ErrObligationNotFound, o.ID)
		}
		return nil, fmt.Errorf("%w: obligation %s", domain.ErrVersionConflict, o.ID)
	}

	return &saved, nil
}

// FindDueForGeneration returns all active recurring obligations whose next
// generation date is on or before today, oldest first.
func (s *Store) FindDueForGeneration(ctx context.Context, today time.Time) ([]*domain.Obligation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+obligationColumns+` FROM obligations
		 WHERE active
		   AND recurrence <> 'NONE'
		   AND next_generation_date IS NOT NULL
		   AND next_generation_date <= $1
		 ORDER BY next_generation_date ASC`, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations due for generation: %w", err)
	}
	defer rows.Close()

	return collectObligations(rows)
}

// FindDueBetween returns active, not-completed obligations due in the
// inclusive range [from, until], ordered by due date.
func (s *Store) FindDueBetween(ctx context.Context, from, until time.Time) ([]*domain.Obligation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+obligationColumns+` FROM obligations
		 WHERE active
		   AND NOT completed
		   AND due_date BETWEEN $1 AND $2
		 ORDER BY due_date ASC`, from, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations by due date: %w", err)
	}
	defer rows.Close()

	return collectObligations(rows)
}

// CountByCompleted counts active obligations by completion state.
func (s *Store) CountByCompleted(ctx context.Context, completed bool) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM obligations WHERE active AND completed = $1`, completed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count obligations: %w", err)
	}
	return count, nil
}

// CountOverdue counts active open obligations whose due date has passed.
func (s *Store) CountOverdue(ctx context.Context, today time.Time) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM obligations WHERE active AND NOT completed AND due_date < $1`, today).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue obligations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (*domain.Obligation, error) {
	var o domain.Obligation
	var kind, recurrence string

	err := row.Scan(
		&o.ID, &o.Name, &kind, &o.Description, &o.ClientID, &o.ResponsibleID,
		&o.DueDate, &recurrence, &o.CustomIntervalDays, &o.RecurrenceDayOfMonth,
		&o.AdjustForWeekends, &o.AdjustForHolidays, &o.NextGenerationDate,
		&o.Active, &o.Completed, &o.CompletedOn, &o.CreatedAt, &o.UpdatedAt, &o.LastEditor, &o.Version)
	if err != nil {
		return nil, err
	}

	o.Kind = domain.ObligationKind(kind)
	o.Recurrence = domain.RecurrenceKind(recurrence)

	// Calendar math expects day values at midnight UTC; the session
	// timezone must not leak into scanned DATE columns.
	o.DueDate = o.DueDate.UTC()
	return &o, nil
}

func collectObligations(rows pgx.Rows) ([]*domain.Obligation, error) {
	var out []*domain.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obligations: %w", err)
	}
	return out, nil
}
