package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdjustWeekendSingleStep(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"saturday advances two days", Date(2024, time.June, 8), Date(2024, time.June, 10)},
		{"sunday advances one day", Date(2024, time.June, 9), Date(2024, time.June, 10)},
		{"friday unchanged", Date(2024, time.June, 7), Date(2024, time.June, 7)},
		{"wednesday unchanged", Date(2024, time.June, 12), Date(2024, time.June, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Adjust(tt.in, true, false))
		})
	}
}

func TestAdjustHolidayLoop(t *testing.T) {
	// May 1st 2024 is a Wednesday.
	assert.Equal(t, Date(2024, time.May, 2), Adjust(Date(2024, time.May, 1), true, true))

	// Consecutive Carnival holidays: Feb 13 and Feb 14 2024 both skip.
	assert.Equal(t, Date(2024, time.February, 15), Adjust(Date(2024, time.February, 13), true, true))
}

func TestAdjustWeekendStepLandsOnHoliday(t *testing.T) {
	// Sunday Dec 31 2023 steps to Monday Jan 1st, which the holiday loop then skips.
	assert.Equal(t, Date(2024, time.January, 2), Adjust(Date(2023, time.December, 31), true, true))
}

func TestAdjustPoliciesAreIndependent(t *testing.T) {
	// Weekend-only: lands on New Year's Day because the holiday flag is off.
	assert.Equal(t, Date(2024, time.January, 1), Adjust(Date(2023, time.December, 30), true, false))

	// Holiday-only: a Saturday passes through untouched.
	assert.Equal(t, Date(2024, time.June, 8), Adjust(Date(2024, time.June, 8), false, true))

	// Both off: identity.
	assert.Equal(t, Date(2024, time.May, 1), Adjust(Date(2024, time.May, 1), false, false))
}

func TestAdjustHolidayAdvanceCanLandOnWeekend(t *testing.T) {
	// Good Friday 2024-03-29: the holiday loop advances to Saturday and the
	// weekend rule does not re-run. Documented source behavior.
	assert.Equal(t, Date(2024, time.March, 30), Adjust(Date(2024, time.March, 29), true, true))
}

func TestAdjustNeverReturnsWeekend(t *testing.T) {
	for d := Date(2024, time.January, 1); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		got := Adjust(d, true, false)
		assert.False(t, IsWeekend(got), "adjust(%s) returned weekend %s",
			d.Format(time.DateOnly), got.Format(time.DateOnly))
	}
}

func TestAdjustNeverReturnsHoliday(t *testing.T) {
	for d := Date(2024, time.January, 1); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		got := Adjust(d, false, true)
		assert.False(t, IsHoliday(got), "adjust(%s) returned holiday %s",
			d.Format(time.DateOnly), got.Format(time.DateOnly))
	}
}

func TestAdjustStableOnceOffWeekend(t *testing.T) {
	// After one pass the result is never a holiday; whenever it is also not a
	// weekend day, a second pass must leave it unchanged.
	for d := Date(2024, time.January, 1); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		first := Adjust(d, true, true)
		if IsWeekend(first) {
			continue
		}
		assert.Equal(t, first, Adjust(first, true, true), "from %s", d.Format(time.DateOnly))
	}
}
