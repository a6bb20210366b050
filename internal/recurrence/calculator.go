// Package recurrence computes the next due date and next generation date for
// recurring obligations, one calculator per recurrence kind.
package recurrence

import (
	"fmt"
	"time"

	"github.com/pedrovi35/fiscalapp/internal/calendar"
	"github.com/pedrovi35/fiscalapp/internal/domain"
)

// calculatorFor selects the interval calculator for an obligation.
// Returns domain.ErrInvalidRecurrence for non-recurring obligations:
// callers must guard, a NONE kind reaching this point is a contract bug.
func calculatorFor(o *domain.Obligation) (IntervalCalculator, error) {
	switch o.Recurrence {
	case domain.RecurrenceMonthly:
		return MonthlyCalculator{}, nil
	case domain.RecurrenceQuarterly:
		return QuarterlyCalculator{}, nil
	case domain.RecurrenceSemiannual:
		return SemiannualCalculator{}, nil
	case domain.RecurrenceAnnual:
		return AnnualCalculator{}, nil
	case domain.RecurrenceCustom:
		days := 0
		if o.CustomIntervalDays != nil {
			days = *o.CustomIntervalDays
		}
		return CustomCalculator{IntervalDays: days}, nil
	default:
		return nil, fmt.Errorf("%w: kind %q", domain.ErrInvalidRecurrence, o.Recurrence)
	}
}

// NextGenerationDate computes the date on which the next occurrence of the
// obligation should be generated, anchored at today. The recurrence
// day-of-month, when set, forces the candidate onto that billing day
// (clamped to the target month's length) before business-day adjustment.
func NextGenerationDate(o *domain.Obligation, today time.Time) (time.Time, error) {
	calc, err := calculatorFor(o)
	if err != nil {
		return time.Time{}, err
	}

	candidate := calc.Next(calendar.Date(today.Year(), today.Month(), today.Day()))
	if calc.AnchorsDayOfMonth() && o.RecurrenceDayOfMonth != nil {
		candidate = forceDayOfMonth(candidate, *o.RecurrenceDayOfMonth)
	}

	return calendar.Adjust(candidate, o.AdjustForWeekends, o.AdjustForHolidays), nil
}

// NextDueDate computes the due date of the next occurrence from the expiring
// obligation's current due date. Unlike the generation-date path it tracks
// calendar drift from the prior instance: the day-of-month anchor does not
// apply here.
func NextDueDate(o *domain.Obligation) (time.Time, error) {
	calc, err := calculatorFor(o)
	if err != nil {
		return time.Time{}, err
	}

	candidate := calc.Next(o.DueDate)
	return calendar.Adjust(candidate, o.AdjustForWeekends, o.AdjustForHolidays), nil
}

// forceDayOfMonth moves the date onto the requested day of its month,
// clamped to the month's actual length (day 31 in a 30-day month yields 30).
func forceDayOfMonth(date time.Time, day int) time.Time {
	if day < 1 {
		return date
	}
	lastDay := calendar.Date(date.Year(), date.Month()+1, 0).Day()
	if day > lastDay {
		day = lastDay
	}
	return calendar.Date(date.Year(), date.Month(), day)
}
