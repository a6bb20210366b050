package calendar

import "time"

// Adjust moves a raw due date forward according to two independent policies.
//
// Weekend skipping is a single-step rule: Saturday advances 2 days, Sunday
// advances 1 day, both landing on Monday; it cannot chain. Holiday skipping
// then runs on the weekend-adjusted date and advances one day at a time until
// a non-holiday is reached (advancing past a holiday can land on another
// holiday, e.g. consecutive Carnival days). The loop terminates because the
// date is strictly increasing and holidays are finite per year.
//
// Holiday skipping does not re-run the weekend rule: a date pushed past a
// Friday holiday lands on Saturday when only the weekend flag would have
// moved it. Callers wanting a full business-day guarantee should use
// NextBusinessDay instead.
func Adjust(date time.Time, skipWeekends, skipHolidays bool) time.Time {
	adjusted := date

	if skipWeekends {
		switch adjusted.Weekday() {
		case time.Saturday:
			adjusted = adjusted.AddDate(0, 0, 2)
		case time.Sunday:
			adjusted = adjusted.AddDate(0, 0, 1)
		}
	}

	if skipHolidays {
		for IsHoliday(adjusted) {
			adjusted = adjusted.AddDate(0, 0, 1)
		}
	}

	return adjusted
}
