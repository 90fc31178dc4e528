// Package period partitions time into the half-month buckets that timesheets
// are submitted and approved by.
//
// Half 1 covers days 1 through 15, half 2 covers day 16 through the last day
// of the month. The day of month is always taken in the calculator's
// location, so the same instant can land in different periods for
// organizations in different timezones.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"timesheet/internal/errors"
)

// SplitDay is the last day of month that belongs to the first half.
const SplitDay = 15

// ID identifies one half-month period.
type ID struct {
	Year  int
	Month time.Month
	Half  int
}

// String renders the zero-padded YYYY-MM-H form, which sorts chronologically.
func (id ID) String() string {
	return fmt.Sprintf("%04d-%02d-%d", id.Year, int(id.Month), id.Half)
}

// IsZero reports whether the id was never set.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Compare returns -1, 0 or 1 depending on whether id is before, equal to or
// after other.
func (id ID) Compare(other ID) int {
	switch {
	case id.Year != other.Year:
		return cmpInt(id.Year, other.Year)
	case id.Month != other.Month:
		return cmpInt(int(id.Month), int(other.Month))
	default:
		return cmpInt(id.Half, other.Half)
	}
}

// Less reports whether id is chronologically before other.
func (id ID) Less(other ID) bool {
	return id.Compare(other) < 0
}

// Next returns the period that follows id.
func (id ID) Next() ID {
	if id.Half == 1 {
		return ID{Year: id.Year, Month: id.Month, Half: 2}
	}
	y, m, _ := time.Date(id.Year, id.Month+1, 1, 0, 0, 0, 0, time.UTC).Date()
	return ID{Year: y, Month: m, Half: 1}
}

// Prev returns the period that precedes id.
func (id ID) Prev() ID {
	if id.Half == 2 {
		return ID{Year: id.Year, Month: id.Month, Half: 1}
	}
	y, m, _ := time.Date(id.Year, id.Month-1, 1, 0, 0, 0, 0, time.UTC).Date()
	return ID{Year: y, Month: m, Half: 2}
}

// MarshalText lets ids be used as JSON object keys.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the YYYY-MM-H form.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parse reads an id in the YYYY-MM-H form.
func Parse(s string) (ID, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 1 {
		return ID{}, errors.NewInvalidInputError("period", s, "expected YYYY-MM-1 or YYYY-MM-2")
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return ID{}, errors.NewInvalidInputError("period", s, "year is not a number")
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return ID{}, errors.NewInvalidInputError("period", s, "month must be 01 to 12")
	}
	half, err := strconv.Atoi(parts[2])
	if err != nil || (half != 1 && half != 2) {
		return ID{}, errors.NewInvalidInputError("period", s, "half must be 1 or 2")
	}
	return ID{Year: year, Month: time.Month(month), Half: half}, nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
