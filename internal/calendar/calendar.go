// Package calendar converts day counts into concrete dates.
//
// Every project schedules in exactly one Mode. In ModeCalendar a day is any
// day; in ModeWorkingDays weekends and the supplied holidays are skipped.
// All durations and lags in the scheduling core are expressed in the unit of
// the project's mode, and all date math goes through a Calendar.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Mode selects how days are counted.
type Mode string

const (
	// ModeCalendar counts every day.
	ModeCalendar Mode = "calendar"

	// ModeWorkingDays counts Monday through Friday, minus holidays.
	ModeWorkingDays Mode = "working_days"
)

// DefaultMaxGap is the longest run of consecutive non-working days a scan
// will cross before giving up with ErrNoWorkingDays.
const DefaultMaxGap = 370

// ErrNoWorkingDays is returned when no working day can be reached within the
// calendar's max gap, e.g. when the holiday set covers every weekday.
var ErrNoWorkingDays = errors.New("no working day within reach")

// ParseMode converts a user-supplied string to a Mode. Hyphens and case are
// ignored, so "Working-Days" is accepted.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown calendar mode %q; must be one of: calendar, working_days", s)
	}
	return m, nil
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeCalendar || m == ModeWorkingDays
}

// String implements fmt.Stringer and pflag.Value.
func (m Mode) String() string {
	return string(m)
}

// Set implements pflag.Value.
func (m *Mode) Set(s string) error {
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value.
func (m *Mode) Type() string {
	return "mode"
}

// Calendar performs day arithmetic in a single Mode. A Calendar is immutable
// after construction and safe for concurrent use.
type Calendar struct {
	mode     Mode
	holidays map[Date]struct{}
	maxGap   int
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithMaxGap overrides DefaultMaxGap. Values below 1 are ignored.
func WithMaxGap(n int) Option {
	return func(c *Calendar) {
		if n > 0 {
			c.maxGap = n
		}
	}
}

// New creates a Calendar. Holidays are only consulted in ModeWorkingDays.
func New(mode Mode, holidays []Date, opts ...Option) (*Calendar, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("creating calendar: unknown mode %q", mode)
	}
	c := &Calendar{
		mode:     mode,
		holidays: make(map[Date]struct{}, len(holidays)),
		maxGap:   DefaultMaxGap,
	}
	for _, h := range holidays {
		c.holidays[h] = struct{}{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Mode returns the calendar's counting mode.
func (c *Calendar) Mode() Mode {
	return c.mode
}

// Holidays returns the configured holidays in ascending order.
func (c *Calendar) Holidays() []Date {
	out := make([]Date, 0, len(c.holidays))
	for h := range c.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsWorkingDay reports whether d counts as a day in this calendar.
func (c *Calendar) IsWorkingDay(d Date) bool {
	if c.mode == ModeCalendar {
		return true
	}
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[d]
	return !holiday
}

// Normalize returns the first working day on or after d.
func (c *Calendar) Normalize(d Date) (Date, error) {
	if c.IsWorkingDay(d) {
		return d, nil
	}
	return c.step(d, 1)
}

// AddDays returns the date n days after d (before d when n is negative).
//
// In ModeWorkingDays d is first moved forward to a working day, and only
// working days are counted, so the result is always a working day.
func (c *Calendar) AddDays(d Date, n int) (Date, error) {
	if c.mode == ModeCalendar {
		return d.Add(n), nil
	}

	cur, err := c.Normalize(d)
	if err != nil {
		return 0, fmt.Errorf("adding %d days to %s: %w", n, d, err)
	}

	dir := 1
	if n < 0 {
		dir = -1
		n = -n
	}
	for ; n > 0; n-- {
		cur, err = c.step(cur, dir)
		if err != nil {
			return 0, fmt.Errorf("adding days to %s: %w", d, err)
		}
	}
	return cur, nil
}

// WorkingDuration returns the number of days in [start, end) counted in the
// calendar's mode. The result is negative when end is before start.
func (c *Calendar) WorkingDuration(start, end Date) (int, error) {
	if c.mode == ModeCalendar {
		return end.Sub(start), nil
	}
	if end < start {
		n, err := c.WorkingDuration(end, start)
		return -n, err
	}

	count := 0
	for d := start; d < end; d++ {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	if count == 0 && end.Sub(start) > c.maxGap {
		return 0, fmt.Errorf("measuring %s..%s: %w", start, end, ErrNoWorkingDays)
	}
	return count, nil
}

// step moves from d to the next working day in direction dir.
func (c *Calendar) step(d Date, dir int) (Date, error) {
	for gap := 0; gap <= c.maxGap; gap++ {
		d = d.Add(dir)
		if c.IsWorkingDay(d) {
			return d, nil
		}
	}
	return 0, ErrNoWorkingDays
}
