package obligation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrovi35/fiscalapp/internal/calendar"
	"github.com/pedrovi35/fiscalapp/internal/domain"
	"github.com/pedrovi35/fiscalapp/internal/ptr"
)

type mockHistory struct {
	creations   []string
	completions []string
	fieldDiffs  int
}

func (m *mockHistory) RecordCreation(_ context.Context, o *domain.Obligation, _ string) error {
	m.creations = append(m.creations, o.ID)
	return nil
}

func (m *mockHistory) RecordCompletion(_ context.Context, o *domain.Obligation, _ string) error {
	m.completions = append(m.completions, o.ID)
	return nil
}

func (m *mockHistory) RecordFieldChanges(_ context.Context, _, _ *domain.Obligation, _ string) error {
	m.fieldDiffs++
	return nil
}

type notifyCall struct {
	event         string
	obligationID  string
	daysRemaining int
}

type mockNotifier struct {
	calls []notifyCall
}

func (m *mockNotifier) NotifyCreated(_ context.Context, id, _, _ string) {
	m.calls = append(m.calls, notifyCall{event: "created", obligationID: id})
}

func (m *mockNotifier) NotifyUpdated(_ context.Context, id, _, _ string) {
	m.calls = append(m.calls, notifyCall{event: "updated", obligationID: id})
}

func (m *mockNotifier) NotifyCompleted(_ context.Context, id, _, _ string) {
	m.calls = append(m.calls, notifyCall{event: "completed", obligationID: id})
}

func (m *mockNotifier) NotifyDeleted(_ context.Context, id, _, _ string) {
	m.calls = append(m.calls, notifyCall{event: "deleted", obligationID: id})
}

func (m *mockNotifier) NotifyDueSoon(_ context.Context, id, _ string, daysRemaining int) {
	m.calls = append(m.calls, notifyCall{event: "due_soon", obligationID: id, daysRemaining: daysRemaining})
}

func (m *mockNotifier) NotifyMonthlyReport(_ context.Context, _, _, _ int64) {
	m.calls = append(m.calls, notifyCall{event: "monthly_report"})
}

func newTestService(repo *mockRepo, today time.Time) (*Service, *mockHistory, *mockNotifier) {
	hist := &mockHistory{}
	notif := &mockNotifier{}
	svc := NewService(repo, hist, notif, WithServiceClock(fixedClock(today)))
	return svc, hist, notif
}

func TestCreateAdjustsDueDateAndSetsMarker(t *testing.T) {
	repo := newMockRepo()
	svc, hist, notif := newTestService(repo, calendar.Date(2024, time.June, 1))

	created, err := svc.Create(context.Background(), CreateParams{
		Name:       "DCTF",
		Kind:       domain.KindDeclaration,
		DueDate:    calendar.Date(2024, time.June, 8), // Saturday
		Recurrence: domain.RecurrenceMonthly,
		Editor:     "maria",
	})
	require.NoError(t, err)

	assert.Equal(t, calendar.Date(2024, time.June, 10), created.DueDate)
	assert.True(t, created.Active)
	assert.True(t, created.AdjustForWeekends)
	assert.True(t, created.AdjustForHolidays)

	// June 1 + 1 month = Monday July 1st.
	require.NotNil(t, created.NextGenerationDate)
	assert.Equal(t, calendar.Date(2024, time.July, 1), *created.NextGenerationDate)

	assert.Equal(t, []string{created.ID}, hist.creations)
	require.Len(t, notif.calls, 1)
	assert.Equal(t, "created", notif.calls[0].event)
}

func TestCreateNonRecurringHasNoMarker(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo, calendar.Date(2024, time.June, 1))

	created, err := svc.Create(context.Background(), CreateParams{
		Name:    "Alvará",
		Kind:    domain.KindDocument,
		DueDate: calendar.Date(2024, time.June, 12),
		Editor:  "maria",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RecurrenceNone, created.Recurrence)
	assert.Nil(t, created.NextGenerationDate)
}

func TestCreateHonorsExplicitAdjustFlags(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo, calendar.Date(2024, time.June, 1))

	created, err := svc.Create(context.Background(), CreateParams{
		Name:              "Guia avulsa",
		Kind:              domain.KindTax,
		DueDate:           calendar.Date(2024, time.June, 8), // Saturday
		AdjustForWeekends: ptr.To(false),
		AdjustForHolidays: ptr.To(false),
		Editor:            "maria",
	})
	require.NoError(t, err)

	assert.False(t, created.AdjustForWeekends)
	assert.Equal(t, calendar.Date(2024, time.June, 8), created.DueDate)
}

func TestUpdateClearsMarkerWhenRecurrenceRemoved(t *testing.T) {
	repo := newMockRepo()
	original := recurringFixture(repo)
	svc, hist, _ := newTestService(repo, calendar.Date(2024, time.June, 1))

	updated, err := svc.Update(context.Background(), original.ID, UpdateParams{
		Name:       original.Name,
		Kind:       original.Kind,
		DueDate:    original.DueDate,
		Recurrence: domain.RecurrenceNone,
		Editor:     "joao",
	})
	require.NoError(t, err)

	assert.Nil(t, updated.NextGenerationDate)
	assert.Equal(t, 1, hist.fieldDiffs)
}

func TestUpdateRecomputesMarkerOnRecurrenceChange(t *testing.T) {
	repo := newMockRepo()
	original := recurringFixture(repo)
	svc, _, _ := newTestService(repo, calendar.Date(2024, time.June, 3))

	updated, err := svc.Update(context.Background(), original.ID, UpdateParams{
		Name:       original.Name,
		Kind:       original.Kind,
		DueDate:    original.DueDate,
		Recurrence: domain.RecurrenceQuarterly,
		Editor:     "joao",
	})
	require.NoError(t, err)

	// June 3 + 3 months = Tuesday September 3.
	require.NotNil(t, updated.NextGenerationDate)
	assert.Equal(t, calendar.Date(2024, time.September, 3), *updated.NextGenerationDate)
}

func TestUpdateNotFound(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo, calendar.Date(2024, time.June, 1))

	_, err := svc.Update(context.Background(), "missing", UpdateParams{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrObligationNotFound)
}

func TestCompleteStampsDateAndKeepsRecurrence(t *testing.T) {
	repo := newMockRepo()
	original := recurringFixture(repo)
	svc, hist, notif := newTestService(repo, calendar.Date(2024, time.May, 9))

	completed, err := svc.Complete(context.Background(), original.ID, "maria")
	require.NoError(t, err)

	assert.True(t, completed.Completed)
	require.NotNil(t, completed.CompletedOn)
	assert.Equal(t, calendar.Date(2024, time.May, 9), *completed.CompletedOn)

	// Completion never clears the generation marker: the next cycle still spawns.
	assert.NotNil(t, completed.NextGenerationDate)

	assert.Equal(t, []string{original.ID}, hist.completions)
	require.Len(t, notif.calls, 1)
	assert.Equal(t, "completed", notif.calls[0].event)
}

func TestDeactivateSoftDeletes(t *testing.T) {
	repo := newMockRepo()
	original := recurringFixture(repo)
	svc, _, notif := newTestService(repo, calendar.Date(2024, time.May, 9))

	require.NoError(t, svc.Deactivate(context.Background(), original.ID, "maria"))

	stored, err := repo.FindByID(context.Background(), original.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	due, err := repo.FindDueForGeneration(context.Background(), calendar.Date(2024, time.December, 31))
	require.NoError(t, err)
	assert.Empty(t, due)

	require.Len(t, notif.calls, 1)
	assert.Equal(t, "deleted", notif.calls[0].event)
}

func TestGenerateNowPropagatesErrors(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo, calendar.Date(2024, time.May, 9))

	_, err := svc.GenerateNow(context.Background(), "missing", "maria")
	assert.ErrorIs(t, err, domain.ErrObligationNotFound)
}

func TestGenerateNowRecordsHistoryWithEditor(t *testing.T) {
	repo := newMockRepo()
	original := recurringFixture(repo)
	svc, hist, notif := newTestService(repo, calendar.Date(2024, time.January, 1))

	generated, err := svc.GenerateNow(context.Background(), original.ID, "maria")
	require.NoError(t, err)

	assert.Equal(t, []string{generated.ID}, hist.creations)
	require.Len(t, notif.calls, 1)
	assert.Equal(t, "created", notif.calls[0].event)
	assert.Equal(t, generated.ID, notif.calls[0].obligationID)
}
