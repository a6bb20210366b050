package obligation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrovi35/fiscalapp/internal/calendar"
	"github.com/pedrovi35/fiscalapp/internal/domain"
	"github.com/pedrovi35/fiscalapp/internal/ptr"
)

// mockRepo is an in-memory Repository for engine tests.
type mockRepo struct {
	store      map[string]*domain.Obligation
	nextID     int
	failInsert error
	failUpdate error
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[string]*domain.Obligation)}
}

func (m *mockRepo) add(o *domain.Obligation) *domain.Obligation {
	m.nextID++
	saved := *o
	if saved.ID == "" {
		saved.ID = fmt.Sprintf("obl-%d", m.nextID)
	}
	if saved.Version == 0 {
		saved.Version = 1
	}
	m.store[saved.ID] = &saved
	return &saved
}

func (m *mockRepo) FindByID(_ context.Context, id string) (*domain.Obligation, error) {
	o, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrObligationNotFound, id)
	}
	copied := *o
	return &copied, nil
}

func (m *mockRepo) Save(_ context.Context, o *domain.Obligation) (*domain.Obligation, error) {
	if o.ID == "" {
		if m.failInsert != nil {
			return nil, m.failInsert
		}
		return m.add(o), nil
	}

	if m.failUpdate != nil {
		return nil, m.failUpdate
	}
	existing, ok := m.store[o.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrObligationNotFound, o.ID)
	}
	if existing.Version != o.Version {
		return nil, fmt.Errorf("%w: obligation %s", domain.ErrVersionConflict, o.ID)
	}
	saved := *o
	saved.Version = o.Version + 1
	m.store[o.ID] = &saved
	return &saved, nil
}

func (m *mockRepo) FindDueForGeneration(_ context.Context, today time.Time) ([]*domain.Obligation, error) {
	var out []*domain.Obligation
	for _, o := range m.store {
		if o.Active && o.IsRecurring() && o.NextGenerationDate != nil && !o.NextGenerationDate.After(today) {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockRepo) FindDueBetween(_ context.Context, from, until time.Time) ([]*domain.Obligation, error) {
	var out []*domain.Obligation
	for _, o := range m.store {
		if o.Active && !o.Completed && !o.DueDate.Before(from) && !o.DueDate.After(until) {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func recurringFixture(repo *mockRepo) *domain.Obligation {
	marker := calendar.Date(2024, time.January, 1)
	return repo.add(&domain.Obligation{
		Name:               "DAS mensal",
		Kind:               domain.KindTax,
		DueDate:            calendar.Date(2024, time.May, 10),
		Recurrence:         domain.RecurrenceMonthly,
		AdjustForWeekends:  true,
		AdjustForHolidays:  true,
		NextGenerationDate: &marker,
		Active:             true,
	})
}

func TestGenerateNextSpawnsOccurrenceAndAdvancesMarker(t *testing.T) {
	repo := newMockRepo()
	original := recurringFixture(repo)

	today := calendar.Date(2024, time.January, 1)
	g := NewGenerator(repo, WithClock(fixedClock(today)))

	generated, err := g.GenerateNext(context.Background(), original.ID)
	require.NoError(t, err)

	// The occurrence is a fresh open record with the recomputed due date.
	assert.NotEqual(t, original.ID, generated.ID)
	assert.Equal(t, calendar.Date(2024, time.June, 10), generated.DueDate)
	assert.True(t, generated.Active)
	assert.False(t, generated.Completed)
	assert.Equal(t, domain.SystemEditor, generated.LastEditor)

	// Its own generation date is anchored at today: Jan 1 + 1 month.
	require.NotNil(t, generated.NextGenerationDate)
	assert.Equal(t, calendar.Date(2024, time.February, 1), *generated.NextGenerationDate)

	// The original's marker advanced to the same value, strictly past today.
	stored, err := repo.FindByID(context.Background(), original.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.NextGenerationDate)
	assert.Equal(t, *generated.NextGenerationDate, *stored.NextGenerationDate)
	assert.True(t, stored.NextGenerationDate.After(today))
}

func TestGenerateNextInsertFailureLeavesMarkerUntouched(t *testing.T) {
	repo := newMockRepo()
	original := recurringFixture(repo)
	repo.failInsert = errors.New("connection reset")

	g := NewGenerator(repo, WithClock(fixedClock(calendar.Date(2024, time.January, 1))))

	_, err := g.GenerateNext(context.Background(), original.ID)
	require.Error(t, err)

	stored, err := repo.FindByID(context.Background(), original.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.NextGenerationDate)
	assert.Equal(t, calendar.Date(2024, time.January, 1), *stored.NextGenerationDate)
	assert.Len(t, repo.store, 1)
}

func TestGenerateNextMarkerUpdateFailureSurfaces(t *testing.T) {
	repo := newMockRepo()
	original := recurringFixture(repo)
	repo.failUpdate = fmt.Errorf("%w: obligation %s", domain.ErrVersionConflict, original.ID)

	g := NewGenerator(repo, WithClock(fixedClock(calendar.Date(2024, time.January, 1))))

	_, err := g.GenerateNext(context.Background(), original.ID)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	// The occurrence exists but the caller is told the marker did not move.
	assert.Len(t, repo.store, 2)
}

func TestGenerateNextNotFound(t *testing.T) {
	g := NewGenerator(newMockRepo())

	_, err := g.GenerateNext(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrObligationNotFound)
}

func TestGenerateNextNonRecurring(t *testing.T) {
	repo := newMockRepo()
	o := repo.add(&domain.Obligation{
		Name:       "Alvará anual avulso",
		Kind:       domain.KindDocument,
		DueDate:    calendar.Date(2024, time.June, 12),
		Recurrence: domain.RecurrenceNone,
		Active:     true,
	})

	g := NewGenerator(repo)

	_, err := g.GenerateNext(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrence)
}

func TestGenerateNextCopiesRecurrencePolicy(t *testing.T) {
	repo := newMockRepo()
	marker := calendar.Date(2024, time.March, 1)
	original := repo.add(&domain.Obligation{
		Name:                 "Parcelamento",
		Kind:                 domain.KindInstallment,
		Description:          "Parcela do REFIS",
		ClientID:             ptr.To("client-1"),
		ResponsibleID:        ptr.To("user-7"),
		DueDate:              calendar.Date(2024, time.March, 15),
		Recurrence:           domain.RecurrenceCustom,
		CustomIntervalDays:   ptr.To(30),
		AdjustForWeekends:    true,
		AdjustForHolidays:    false,
		NextGenerationDate:   &marker,
		Active:               true,
		Completed:            true,
		RecurrenceDayOfMonth: ptr.To(15),
	})

	g := NewGenerator(repo, WithClock(fixedClock(marker)))

	generated, err := g.GenerateNext(context.Background(), original.ID)
	require.NoError(t, err)

	assert.Equal(t, original.Name, generated.Name)
	assert.Equal(t, original.Kind, generated.Kind)
	assert.Equal(t, original.Description, generated.Description)
	assert.Equal(t, original.ClientID, generated.ClientID)
	assert.Equal(t, original.ResponsibleID, generated.ResponsibleID)
	assert.Equal(t, original.Recurrence, generated.Recurrence)
	assert.Equal(t, original.CustomIntervalDays, generated.CustomIntervalDays)
	assert.Equal(t, original.AdjustForWeekends, generated.AdjustForWeekends)
	assert.Equal(t, original.AdjustForHolidays, generated.AdjustForHolidays)

	// Lifecycle state resets even when the expiring record was completed.
	assert.False(t, generated.Completed)
	assert.True(t, generated.Active)
}
