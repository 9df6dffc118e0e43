package legisnapshot

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	// OpenEnded is the sentinel end date the upstream archives use for "still valid".
	OpenEnded = NewDate(2999, time.January, 1)

	// MinReferenceDate is the earliest reference date accepted at the service boundary.
	MinReferenceDate = NewDate(1700, time.January, 1)

	// MaxReferenceDate is the latest reference date accepted at the service boundary.
	MaxReferenceDate = NewDate(2999, time.December, 31)
)

// Date is a civil calendar date without time zone. The zero value means "no date".
type Date struct {
	t time.Time
}

// NewDate builds a Date from its calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the UTC calendar date of t.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate parses a YYYY-MM-DD date. Surrounding spaces are ignored, anything else is ErrInvalidDate.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, errors.Join(ErrInvalidDate, fmt.Errorf("parsing %q: %w", raw, err))
	}

	return Date{t: t}, nil
}

// MustParseDate is like ParseDate but panics on malformed input. Meant for constants and tests.
func MustParseDate(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}

	return d
}

// IsZero reports whether d carries no date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	return d.t.Compare(other.t)
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return d.t
}

// String formats d as YYYY-MM-DD, or returns an empty string for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.t.Format(dateLayout)
}

// MarshalJSON encodes d as a YYYY-MM-DD string, or null for the zero Date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}

	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Today returns the current UTC calendar date according to now.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}

	return DateOf(now())
}

// ValidateReferenceDate rejects dates outside [MinReferenceDate, MaxReferenceDate].
func ValidateReferenceDate(d Date) error {
	if d.IsZero() {
		return errors.Join(ErrInvalidDate, errors.New("reference date is empty"))
	}

	if d.Before(MinReferenceDate) || d.After(MaxReferenceDate) {
		return errors.Join(
			ErrInvalidDate,
			fmt.Errorf("reference date %s is outside [%s, %s]", d, MinReferenceDate, MaxReferenceDate),
		)
	}

	return nil
}
