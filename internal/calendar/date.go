package calendar

import (
	"fmt"
	"time"
)

const (
	// ISOLayout is the layout used for every date exchanged at the boundary.
	ISOLayout = "2006-01-02"

	secondsPerDay = 24 * 60 * 60
)

// Date is a calendar date without a time of day, stored as the number of
// days since 1970-01-01. Values compare with the ordinary integer operators,
// and the difference of two dates is a day count.
type Date int

// NewDate returns the Date for the given year, month, and day. Out-of-range
// values are normalized the same way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date(t.Unix() / secondsPerDay)
}

// FromTime returns the Date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParseDate is like ParseDate but panics on error. Intended for tests and
// package-level fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Add returns d shifted by n plain calendar days.
func (d Date) Add(n int) Date {
	return d + Date(n)
}

// Sub returns the number of calendar days from o to d.
func (d Date) Sub(o Date) int {
	return int(d - o)
}

// String returns the ISO form of d.
func (d Date) String() string {
	return d.Time().Format(ISOLayout)
}

// MarshalText implements encoding.TextMarshaler so that JSON, YAML, and TOML
// encoders all emit ISO dates.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler. TOML local dates arrive as
// time.Time; quoted dates arrive as strings.
func (d *Date) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("decoding date: unsupported TOML value %T", v)
	}
}
