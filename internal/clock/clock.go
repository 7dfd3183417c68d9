// Package clock abstracts the wall clock so date stamps in renamed files,
// task completion dates and report ages are deterministic under test.
package clock

import "time"

// DateLayout is the calendar date format used in task records and reports.
const DateLayout = "2006-01-02"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

// Now returns the current local time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock implements Clock with a settable time for testing.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a new FakeClock fixed at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

func (c *FakeClock) Now() time.Time {
	return c.current
}

// Set updates the fixed time.
func (c *FakeClock) Set(t time.Time) {
	c.current = t
}

// Advance moves the fixed time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// Today returns the calendar date of c.Now() formatted with DateLayout.
func Today(c Clock) string {
	return c.Now().Format(DateLayout)
}

// ParseDate parses a DateLayout date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// DaysBetween returns the whole number of calendar days from a to b.
// Both are truncated to midnight in their own location first, so DST
// transitions do not produce off-by-one results.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
