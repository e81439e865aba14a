package domain

import "time"

// Day returns the UTC midnight instant for a calendar date.
// All dates in the panel are normalized to this form so they can be
// compared and used as map keys.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar date in t's own location and
// returns it as a UTC midnight instant.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthOf returns the first day of t's month as a UTC midnight instant.
// Used as the join key for monthly series (size breakpoints).
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterOf returns the first day of t's calendar quarter as a UTC
// midnight instant. Used as the join key for quarterly series
// (analyst coverage).
func QuarterOf(t time.Time) time.Time {
	q := (int(t.Month()) - 1) / 3
	return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether d falls on Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
