// Package scheduler hosts the recurring batch passes: the daily generation
// pass that spawns new occurrences of due recurring obligations, and the
// read-only alert pass for obligations approaching their due date.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pedrovi35/fiscalapp/internal/application/obligation"
	"github.com/pedrovi35/fiscalapp/internal/calendar"
	"github.com/pedrovi35/fiscalapp/internal/domain"
	"github.com/pedrovi35/fiscalapp/internal/notification"
)

// Repository adds the aggregate counts the monthly report needs to the
// obligation repository surface.
type Repository interface {
	obligation.Repository

	CountByCompleted(ctx context.Context, completed bool) (int64, error)
	CountOverdue(ctx context.Context, today time.Time) (int64, error)
}

// Generator spawns the next occurrence of one recurring obligation.
type Generator interface {
	GenerateNext(ctx context.Context, id string) (*domain.Obligation, error)
}

// HistoryRecorder records the creation of generated occurrences.
type HistoryRecorder interface {
	RecordCreation(ctx context.Context, o *domain.Obligation, editor string) error
}

// Driver walks all obligations whose generation date has arrived and emits
// new occurrences, isolating per-item failures so one bad obligation never
// aborts the batch.
type Driver struct {
	repo          Repository
	generator     Generator
	history       HistoryRecorder
	notifier      notification.Notifier
	lookaheadDays int
}

// Option is a functional option for configuring Driver.
type Option func(*Driver)

// WithLookaheadDays sets the due-soon alert window (default 3 days).
func WithLookaheadDays(days int) Option {
	return func(d *Driver) {
		d.lookaheadDays = days
	}
}

// NewDriver creates the batch driver.
func NewDriver(repo Repository, generator Generator, history HistoryRecorder, notifier notification.Notifier, opts ...Option) *Driver {
	d := &Driver{
		repo:          repo,
		generator:     generator,
		history:       history,
		notifier:      notifier,
		lookaheadDays: 3,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Summary reports the outcome of one generation pass.
type Summary struct {
	Processed int
	Generated int
	Failed    int
}

// RunDaily executes one generation pass anchored at today.
//
// The pass is idempotent per obligation-day: each successful generation
// advances the obligation's marker past today, so re-running the same
// trigger finds nothing left to do. Per-item errors are logged with the
// obligation ID, counted, and never re-thrown; cancellation between items is
// honored and safe because each item's persistence is atomic.
func (d *Driver) RunDaily(ctx context.Context, today time.Time) (Summary, error) {
	day := calendar.Date(today.Year(), today.Month(), today.Day())
	slog.InfoContext(ctx, "starting generation pass", "today", day.Format(time.DateOnly))

	due, err := d.repo.FindDueForGeneration(ctx, day)
	if err != nil {
		return Summary{}, err
	}
	if len(due) == 0 {
		slog.InfoContext(ctx, "no obligations due for generation")
		return Summary{}, nil
	}

	summary := Summary{Processed: len(due)}
	for _, o := range due {
		select {
		case <-ctx.Done():
			slog.WarnContext(ctx, "generation pass cancelled mid-batch",
				"generated", summary.Generated, "remaining", summary.Processed-summary.Generated-summary.Failed)
			return summary, ctx.Err()
		default:
		}

		generated, err := d.generator.GenerateNext(ctx, o.ID)
		if err != nil {
			// A single obligation's failure must never abort the batch.
			// Version conflicts are retryable: the marker did not advance, so
			// the next run picks this obligation up again.
			summary.Failed++
			slog.ErrorContext(ctx, "failed to generate occurrence",
				"obligation_id", o.ID, "obligation_name", o.Name, "error", err)
			continue
		}

		summary.Generated++
		if err := d.history.RecordCreation(ctx, generated, domain.SystemEditor); err != nil {
			slog.ErrorContext(ctx, "failed to record generated occurrence",
				"obligation_id", generated.ID, "error", err)
		}
		d.notifier.NotifyCreated(ctx, generated.ID, generated.Name, domain.SystemEditor)
	}

	slog.InfoContext(ctx, "generation pass finished",
		"processed", summary.Processed, "generated", summary.Generated, "failed", summary.Failed)
	return summary, nil
}

// RunDueSoonAlerts emits alerts for open obligations due today and within
// the look-ahead window. The pass is read-only; keeping it separate from the
// mutating generation pass keeps that pass's idempotence guarantee simple.
func (d *Driver) RunDueSoonAlerts(ctx context.Context, today time.Time) error {
	day := calendar.Date(today.Year(), today.Month(), today.Day())

	dueToday, err := d.repo.FindDueBetween(ctx, day, day)
	if err != nil {
		return err
	}
	for _, o := range dueToday {
		d.notifier.NotifyDueSoon(ctx, o.ID, o.Name, 0)
	}

	if d.lookaheadDays < 1 {
		return nil
	}

	upcoming, err := d.repo.FindDueBetween(ctx, day.AddDate(0, 0, 1), day.AddDate(0, 0, d.lookaheadDays))
	if err != nil {
		return err
	}
	for _, o := range upcoming {
		daysRemaining := int(o.DueDate.Sub(day).Hours() / 24)
		d.notifier.NotifyDueSoon(ctx, o.ID, o.Name, daysRemaining)
	}

	slog.InfoContext(ctx, "due-soon alert pass finished",
		"due_today", len(dueToday), "upcoming", len(upcoming))
	return nil
}

// RunMonthlyReport broadcasts the aggregate obligation counts. Like the
// alert pass it is read-only.
func (d *Driver) RunMonthlyReport(ctx context.Context, today time.Time) error {
	day := calendar.Date(today.Year(), today.Month(), today.Day())

	open, err := d.repo.CountByCompleted(ctx, false)
	if err != nil {
		return err
	}
	completed, err := d.repo.CountByCompleted(ctx, true)
	if err != nil {
		return err
	}
	overdue, err := d.repo.CountOverdue(ctx, day)
	if err != nil {
		return err
	}

	d.notifier.NotifyMonthlyReport(ctx, open, completed, overdue)
	slog.InfoContext(ctx, "monthly report pass finished",
		"open", open, "completed", completed, "overdue", overdue)
	return nil
}
