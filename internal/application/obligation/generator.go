package obligation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pedrovi35/fiscalapp/internal/domain"
	"github.com/pedrovi35/fiscalapp/internal/recurrence"
)

// Generator materializes the next occurrence of a recurring obligation as a
// clone of the expiring one, with a recomputed due date and generation date.
type Generator struct {
	repo Repository
	now  func() time.Time
}

// GeneratorOption is a functional option for configuring Generator.
type GeneratorOption func(*Generator)

// WithClock overrides the clock, letting tests pin "today".
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates an occurrence generator backed by the given repository.
func NewGenerator(repo Repository, opts ...GeneratorOption) *Generator {
	g := &Generator{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateNext spawns the next occurrence of the obligation with the given ID.
//
// The new occurrence copies the expiring obligation's identity-independent
// fields, recomputes its due date from the expiring one's, and gets its own
// next generation date anchored at today. The new record is persisted first;
// only then is the original's generation marker advanced to the same value so
// the batch driver will not reprocess it until the new cycle is due. If
// persisting the new record fails the marker is left untouched: a cycle is
// never silently lost.
//
// Returns domain.ErrObligationNotFound if the obligation does not exist and
// domain.ErrInvalidRecurrence if it is non-recurring.
func (g *Generator) GenerateNext(ctx context.Context, id string) (*domain.Obligation, error) {
	original, err := g.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	nextDue, err := recurrence.NextDueDate(original)
	if err != nil {
		return nil, err
	}

	next := cloneForNextCycle(original, nextDue)

	today := g.now()
	nextGeneration, err := recurrence.NextGenerationDate(next, today)
	if err != nil {
		return nil, err
	}
	next.NextGenerationDate = &nextGeneration

	saved, err := g.repo.Save(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("failed to persist new occurrence: %w", err)
	}

	updated := *original
	updated.NextGenerationDate = &nextGeneration
	updated.LastEditor = domain.SystemEditor
	if _, err := g.repo.Save(ctx, &updated); err != nil {
		// The new occurrence exists but the original's marker did not move;
		// the next run will see the original again. Surface the failure so
		// the caller can report it.
		return nil, fmt.Errorf("failed to advance generation marker for obligation %s: %w", original.ID, err)
	}

	slog.InfoContext(ctx, "generated next occurrence",
		"obligation_id", original.ID,
		"occurrence_id", saved.ID,
		"due_date", saved.DueDate.Format(time.DateOnly),
		"next_generation", nextGeneration.Format(time.DateOnly))

	return saved, nil
}

// cloneForNextCycle copies the recurring fields of an expiring obligation
// into a fresh, open occurrence with the recomputed due date. Identity and
// lifecycle fields are reset; storage assigns the new ID.
func cloneForNextCycle(original *domain.Obligation, dueDate time.Time) *domain.Obligation {
	return &domain.Obligation{
		Name:                 original.Name,
		Kind:                 original.Kind,
		Description:          original.Description,
		ClientID:             original.ClientID,
		ResponsibleID:        original.ResponsibleID,
		DueDate:              dueDate,
		Recurrence:           original.Recurrence,
		CustomIntervalDays:   original.CustomIntervalDays,
		RecurrenceDayOfMonth: original.RecurrenceDayOfMonth,
		AdjustForWeekends:    original.AdjustForWeekends,
		AdjustForHolidays:    original.AdjustForHolidays,
		Active:               true,
		Completed:            false,
		LastEditor:           domain.SystemEditor,
	}
}
