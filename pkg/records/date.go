package records

import (
	"time"

	"github.com/specfuse/specfuse/pkg/errors"
)

// dateLayout is the fixed-width day stamp used throughout the pipeline.
// Lexicographic ordering of valid dates equals chronological ordering.
const dateLayout = "20060102"

// Date is a fixed-width YYYYMMDD day stamp identifying one pipeline run.
type Date string

// ParseDate validates and returns a Date from its string form.
func ParseDate(s string) (Date, error) {
	if len(s) != len(dateLayout) {
		return "", errors.NewValidationError("date", s, "must be YYYYMMDD")
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", errors.NewValidationError("date", s, "must be a valid YYYYMMDD date")
	}
	return Date(s), nil
}

// DateOf returns the Date for a point in time.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// String returns the string representation of a date.
func (d Date) String() string {
	return string(d)
}

// Valid reports whether the date parses as YYYYMMDD.
func (d Date) Valid() bool {
	_, err := ParseDate(string(d))
	return err == nil
}

// Before reports whether d sorts before other.
func (d Date) Before(other Date) bool {
	return string(d) < string(other)
}

// Time converts the date to a time.Time at midnight UTC.
// Returns the zero time for invalid dates.
func (d Date) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}
