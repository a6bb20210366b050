// Package calendar computes Brazilian national holidays and business-day
// adjustments for due dates. All functions are pure and operate on
// calendar-day values (midnight UTC); no external holiday API is consulted.
package calendar

import "time"

// Date builds a calendar-day value at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Easter returns Easter Sunday for the given year using the Gregorian
// (Gauss-style anonymous) algorithm.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	n := (h + l - 7*m + 114) / 31
	p := (h + l - 7*m + 114) % 31

	return Date(year, time.Month(n), p+1)
}

// FixedHolidays returns the 8 fixed-date Brazilian national holidays for a year.
func FixedHolidays(year int) []time.Time {
	return []time.Time{
		Date(year, time.January, 1),    // Confraternização Universal
		Date(year, time.April, 21),     // Tiradentes
		Date(year, time.May, 1),        // Dia do Trabalhador
		Date(year, time.September, 7),  // Independência do Brasil
		Date(year, time.October, 12),   // Nossa Senhora Aparecida
		Date(year, time.November, 2),   // Finados
		Date(year, time.November, 15),  // Proclamação da República
		Date(year, time.December, 25),  // Natal
	}
}

// MoveableHolidays returns the 5 Easter-relative holidays for a year:
// Carnival Monday and Tuesday, Good Friday, Easter Sunday and Corpus Christi.
func MoveableHolidays(year int) []time.Time {
	easter := Easter(year)
	return []time.Time{
		easter.AddDate(0, 0, -47), // Carnaval (segunda-feira)
		easter.AddDate(0, 0, -46), // Carnaval (terça-feira)
		easter.AddDate(0, 0, -2),  // Sexta-feira Santa
		easter,                    // Páscoa
		easter.AddDate(0, 0, 60),  // Corpus Christi
	}
}

// IsHoliday reports whether the date is a Brazilian national holiday,
// fixed or moveable. Only year, month and day are considered.
func IsHoliday(date time.Time) bool {
	day := Date(date.Year(), date.Month(), date.Day())

	for _, h := range FixedHolidays(day.Year()) {
		if day.Equal(h) {
			return true
		}
	}
	for _, h := range MoveableHolidays(day.Year()) {
		if day.Equal(h) {
			return true
		}
	}
	return false
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBusinessDay reports whether the date is neither a weekend day nor a holiday.
func IsBusinessDay(date time.Time) bool {
	return !IsWeekend(date) && !IsHoliday(date)
}

// NextBusinessDay returns the first business day strictly after the date.
func NextBusinessDay(date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	for !IsBusinessDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// BusinessDaysBetween counts business days in the inclusive range [from, until].
func BusinessDaysBetween(from, until time.Time) int {
	count := 0
	for current := from; !current.After(until); current = current.AddDate(0, 0, 1) {
		if IsBusinessDay(current) {
			count++
		}
	}
	return count
}
