// Package clock decides what "today" and "yesterday" mean for a user.
//
// Every day comparison in the streak logic goes through this package so a day is
// always a local calendar day (midnight to midnight in the user's time zone), never
// a raw 24h difference between instants.
package clock

import (
	"time"
)

const DateLayout = "2006-01-02"

type Clock struct {
	now func() time.Time
}

func New() *Clock {
	return &Clock{now: time.Now}
}

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) *Clock {
	return &Clock{now: func() time.Time { return t }}
}

// Set freezes c at t.
func (c *Clock) Set(t time.Time) {
	c.now = func() time.Time { return t }
}

func (c *Clock) Now() time.Time { return c.now() }

// Today returns the current day in loc at 00:00:00.000.
func (c *Clock) Today(loc *time.Location) time.Time {
	return StartOfDay(c.now().In(loc))
}

// Yesterday returns Today(loc) minus one calendar day, same normalization.
func (c *Clock) Yesterday(loc *time.Location) time.Time {
	return StartOfDay(c.Today(loc).AddDate(0, 0, -1))
}

// NextReset returns the next local midnight after now.
func (c *Clock) NextReset(loc *time.Location) time.Time {
	return StartOfDay(c.Today(loc).AddDate(0, 0, 1))
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsSameDay compares the (year, month, day) tuples of a and b, each in its own location.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateString formats t as YYYY-MM-DD in t's location.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// Location loads an IANA zone name, falling back to UTC when the name is empty or unknown.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
