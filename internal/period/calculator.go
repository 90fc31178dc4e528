package period

import (
	"fmt"
	"time"

	"timesheet/internal/errors"
)

// Calculator maps instants onto periods in a fixed location.
type Calculator struct {
	loc *time.Location
}

// New creates a calculator for loc. A nil location means UTC.
func New(loc *time.Location) Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return Calculator{loc: loc}
}

// NewForZone creates a calculator for an IANA zone name such as "Europe/Berlin".
func NewForZone(name string) (Calculator, error) {
	if name == "" {
		return New(time.UTC), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Calculator{}, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return New(loc), nil
}

// Location returns the calculator's location.
func (c Calculator) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Of returns the period containing t.
func (c Calculator) Of(t time.Time) ID {
	y, m, d := t.In(c.Location()).Date()
	half := 1
	if d > SplitDay {
		half = 2
	}
	return ID{Year: y, Month: m, Half: half}
}

// Range returns the inclusive bounds of the period containing t.
func (c Calculator) Range(t time.Time) (from, to time.Time) {
	return c.RangeOf(c.Of(t))
}

// RangeOf returns the inclusive bounds of id. The end is the last millisecond
// before the next period starts, 23:59:59.999 local time on most days.
func (c Calculator) RangeOf(id ID) (from, to time.Time) {
	loc := c.Location()
	if id.Half == 1 {
		from = startOfDay(id.Year, id.Month, 1, loc)
		to = startOfDay(id.Year, id.Month, SplitDay+1, loc).Add(-time.Millisecond)
		return from, to
	}
	from = startOfDay(id.Year, id.Month, SplitDay+1, loc)
	to = startOfDay(id.Year, id.Month+1, 1, loc).Add(-time.Millisecond)
	return from, to
}

// Day returns the first and last instant of the local calendar day holding t.
func (c Calculator) Day(t time.Time) (from, to time.Time) {
	y, m, d := t.In(c.Location()).Date()
	return c.dayBounds(y, m, d)
}

// ParseStart reads raw as an RFC 3339 instant or a YYYY-MM-DD day. A bare day
// starts at local midnight.
func (c Calculator) ParseStart(field, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	from, _, err := c.parseDay(field, raw)
	return from, err
}

// ParseEnd is ParseStart for inclusive upper bounds. A bare day covers the
// whole local day; an instant is taken as is.
func (c Calculator) ParseEnd(field, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	_, to, err := c.parseDay(field, raw)
	return to, err
}

// parseDay reads the calendar fields only, so a day whose midnight does not
// exist locally still resolves to that day.
func (c Calculator) parseDay(field, raw string) (from, to time.Time, err error) {
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewInvalidInputError(field, raw, "expected RFC3339 or YYYY-MM-DD")
	}
	from, to = c.dayBounds(day.Date())
	return from, to, nil
}

func (c Calculator) dayBounds(y int, m time.Month, d int) (from, to time.Time) {
	loc := c.Location()
	return startOfDay(y, m, d, loc), startOfDay(y, m, d+1, loc).Add(-time.Nanosecond)
}

// startOfDay returns local midnight of the given day, normalizing overflowing
// months and days like time.Date. Where midnight is skipped by a DST change
// the day starts at the transition.
func startOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	if ty, tm, td := t.Date(); ty == y && tm == m && td == d {
		return t
	}
	if _, end := t.ZoneBounds(); !end.IsZero() {
		return end
	}
	return t
}
