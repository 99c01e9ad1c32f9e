package model

import "time"

const dateLayout = "2006-01-02"

// DateKey returns the local calendar date of t as a zero-padded "YYYY-MM-DD" key.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// Today returns the date key for now.
func Today(now time.Time) string {
	return DateKey(now)
}

// Tomorrow returns the date key for the next calendar day. AddDate increments
// the wall-clock date, so a 23h or 25h DST day still buckets correctly.
func Tomorrow(now time.Time) string {
	return DateKey(now.AddDate(0, 0, 1))
}

// Yesterday returns the date key for the previous calendar day. Used as the
// retention cutoff when purging stale tasks.
func Yesterday(now time.Time) string {
	return DateKey(now.AddDate(0, 0, -1))
}

// ClockHHMM returns the current wall-clock minute of t as "HH:MM", the form
// the scanner compares against task times.
func ClockHHMM(t time.Time) string {
	return t.Format("15:04")
}
