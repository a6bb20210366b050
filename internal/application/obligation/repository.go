package obligation

import (
	"context"
	"time"

	"github.com/pedrovi35/fiscalapp/internal/domain"
)

// Repository defines the storage operations the obligation engine depends on.
// Implementations are synchronous; timeout and retry policy belong to the
// storage layer, not to the engine.
type Repository interface {
	// FindByID retrieves a single obligation.
	// Returns domain.ErrObligationNotFound if it does not exist.
	FindByID(ctx context.Context, id string) (*domain.Obligation, error)

	// Save persists an obligation: inserts when the ID is empty (assigning
	// identity), updates otherwise. Updates verify the optimistic version and
	// return domain.ErrVersionConflict when the record changed since read.
	Save(ctx context.Context, o *domain.Obligation) (*domain.Obligation, error)

	// FindDueForGeneration returns all active obligations with a recurrence
	// kind other than NONE whose next generation date is on or before today.
	FindDueForGeneration(ctx context.Context, today time.Time) ([]*domain.Obligation, error)

	// FindDueBetween returns active, not-completed obligations whose due date
	// falls in the inclusive range [from, until], ordered by due date.
	FindDueBetween(ctx context.Context, from, until time.Time) ([]*domain.Obligation, error)
}
