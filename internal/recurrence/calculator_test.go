package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrovi35/fiscalapp/internal/calendar"
	"github.com/pedrovi35/fiscalapp/internal/domain"
	"github.com/pedrovi35/fiscalapp/internal/ptr"
)

func monthlyObligation(due time.Time) *domain.Obligation {
	return &domain.Obligation{
		Name:              "DAS",
		Kind:              domain.KindTax,
		DueDate:           due,
		Recurrence:        domain.RecurrenceMonthly,
		AdjustForWeekends: true,
		AdjustForHolidays: true,
		Active:            true,
	}
}

func TestNextDueDateMonthly(t *testing.T) {
	// Friday May 10 2024 → Monday June 10 2024, already a business day.
	o := monthlyObligation(calendar.Date(2024, time.May, 10))
	o.RecurrenceDayOfMonth = ptr.To(10)

	got, err := NextDueDate(o)
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2024, time.June, 10), got)
}

func TestNextDueDateAdjustsWeekend(t *testing.T) {
	// May 8 + 1 month = Saturday June 8 → Monday June 10.
	o := monthlyObligation(calendar.Date(2024, time.May, 8))

	got, err := NextDueDate(o)
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2024, time.June, 10), got)
}

func TestNextDueDateIgnoresDayOfMonthAnchor(t *testing.T) {
	// The anchor applies only to the generation-date path: the due-date
	// recompute tracks drift from the prior instance.
	o := monthlyObligation(calendar.Date(2024, time.May, 8))
	o.RecurrenceDayOfMonth = ptr.To(20)

	got, err := NextDueDate(o)
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2024, time.June, 10), got)
}

func TestNextDueDateByKind(t *testing.T) {
	tests := []struct {
		kind domain.RecurrenceKind
		want time.Time
	}{
		{domain.RecurrenceMonthly, calendar.Date(2024, time.February, 15)},
		{domain.RecurrenceQuarterly, calendar.Date(2024, time.April, 15)},
		{domain.RecurrenceSemiannual, calendar.Date(2024, time.July, 15)},
		{domain.RecurrenceAnnual, calendar.Date(2025, time.January, 15)},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			o := monthlyObligation(calendar.Date(2024, time.January, 15))
			o.Recurrence = tt.kind

			got, err := NextDueDate(o)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextGenerationDateAnchorClampsToMonthEnd(t *testing.T) {
	// Anchored to day 31 with a candidate in February: clamps to Feb 29 2024.
	o := monthlyObligation(calendar.Date(2024, time.January, 10))
	o.RecurrenceDayOfMonth = ptr.To(31)

	got, err := NextGenerationDate(o, calendar.Date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2024, time.February, 29), got)
}

func TestNextGenerationDateAnchorShortMonth(t *testing.T) {
	// Day 31 in a 30-day month yields day 30.
	o := monthlyObligation(calendar.Date(2024, time.March, 10))
	o.RecurrenceDayOfMonth = ptr.To(31)

	got, err := NextGenerationDate(o, calendar.Date(2024, time.March, 15))
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2024, time.April, 30), got)
}

func TestNextGenerationDateCustomIgnoresAnchor(t *testing.T) {
	o := monthlyObligation(calendar.Date(2024, time.January, 1))
	o.Recurrence = domain.RecurrenceCustom
	o.CustomIntervalDays = ptr.To(30)
	o.RecurrenceDayOfMonth = ptr.To(15)

	// Jan 1 + 30 days = Wednesday Jan 31, no anchoring for CUSTOM.
	got, err := NextGenerationDate(o, calendar.Date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2024, time.January, 31), got)
}

func TestNextDueDateCustomFallsBackToOneMonth(t *testing.T) {
	o := monthlyObligation(calendar.Date(2024, time.June, 12))
	o.Recurrence = domain.RecurrenceCustom
	o.CustomIntervalDays = nil

	got, err := NextDueDate(o)
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2024, time.July, 12), got)
}

func TestNonRecurringIsAnError(t *testing.T) {
	o := monthlyObligation(calendar.Date(2024, time.June, 12))
	o.Recurrence = domain.RecurrenceNone

	_, err := NextDueDate(o)
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrence)

	_, err = NextGenerationDate(o, calendar.Date(2024, time.June, 12))
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrence)
}

func TestNextGenerationDateAdjustsCandidate(t *testing.T) {
	// Today Nov 30 2023 + 1 month = Saturday Dec 30 → Monday Jan 1st is a
	// holiday → Jan 2 2024.
	o := monthlyObligation(calendar.Date(2023, time.November, 30))

	got, err := NextGenerationDate(o, calendar.Date(2023, time.November, 30))
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2024, time.January, 2), got)
}
