package recurrence

import "time"

// IntervalCalculator produces the raw candidate date one recurrence interval
// after a base date, before any business-day adjustment is applied.
type IntervalCalculator interface {
	// Next returns the raw candidate date one interval after base.
	Next(base time.Time) time.Time

	// AnchorsDayOfMonth reports whether the generation-date path may force
	// the candidate onto the obligation's recurrence day of month.
	AnchorsDayOfMonth() bool
}

// MonthlyCalculator advances one calendar month.
type MonthlyCalculator struct{}

func (MonthlyCalculator) Next(base time.Time) time.Time { return base.AddDate(0, 1, 0) }
func (MonthlyCalculator) AnchorsDayOfMonth() bool       { return true }

// QuarterlyCalculator advances three calendar months.
type QuarterlyCalculator struct{}

func (QuarterlyCalculator) Next(base time.Time) time.Time { return base.AddDate(0, 3, 0) }
func (QuarterlyCalculator) AnchorsDayOfMonth() bool       { return true }

// SemiannualCalculator advances six calendar months.
type SemiannualCalculator struct{}

func (SemiannualCalculator) Next(base time.Time) time.Time { return base.AddDate(0, 6, 0) }
func (SemiannualCalculator) AnchorsDayOfMonth() bool       { return true }

// AnnualCalculator advances one calendar year.
type AnnualCalculator struct{}

func (AnnualCalculator) Next(base time.Time) time.Time { return base.AddDate(1, 0, 0) }
func (AnnualCalculator) AnchorsDayOfMonth() bool       { return true }

// CustomCalculator advances a fixed number of days. A missing or
// non-positive interval falls back to one calendar month.
type CustomCalculator struct {
	IntervalDays int
}

func (c CustomCalculator) Next(base time.Time) time.Time {
	if c.IntervalDays <= 0 {
		return base.AddDate(0, 1, 0)
	}
	return base.AddDate(0, 0, c.IntervalDays)
}

// Custom intervals track day counts, not billing days; the anchor would
// fight the interval, so it never applies.
func (CustomCalculator) AnchorsDayOfMonth() bool { return false }
