package calendar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCalendar(t *testing.T, mode Mode, holidays []Date, opts ...Option) *Calendar {
	t.Helper()
	c, err := New(mode, holidays, opts...)
	require.NoError(t, err)
	return c
}

// ---- Date -------------------------------------------------------------------

func TestParseDate_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{"2026-10-12", "1969-12-31", "2000-02-29", "1970-01-01"}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			t.Parallel()
			d, err := ParseDate(s)
			require.NoError(t, err)
			assert.Equal(t, s, d.String())
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "2026-13-01", "12/10/2026", "2026-10-12T00:00:00Z"} {
		_, err := ParseDate(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestDate_Arithmetic(t *testing.T) {
	t.Parallel()

	d := MustParseDate("2026-10-12")
	assert.Equal(t, Date(-1), NewDate(1969, time.December, 31))
	assert.Equal(t, "2026-10-17", d.Add(5).String())
	assert.Equal(t, 5, d.Add(5).Sub(d))
	assert.Equal(t, time.Monday, d.Weekday())
	assert.Equal(t, d, FromTime(time.Date(2026, 10, 12, 23, 59, 0, 0, time.UTC)))
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Start Date  `json:"start"`
		End   *Date `json:"end,omitempty"`
	}
	end := MustParseDate("2026-10-19")
	data, err := json.Marshal(wrapper{Start: MustParseDate("2026-10-12"), End: &end})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2026-10-12","end":"2026-10-19"}`, string(data))

	var got wrapper
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, MustParseDate("2026-10-12"), got.Start)
	require.NotNil(t, got.End)
	assert.Equal(t, end, *got.End)

	assert.Error(t, json.Unmarshal([]byte(`{"start":"soon"}`), &got))
}

func TestDate_UnmarshalTOML(t *testing.T) {
	t.Parallel()

	var d Date
	require.NoError(t, d.UnmarshalTOML(time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-12-25", d.String())

	require.NoError(t, d.UnmarshalTOML("2026-10-12"))
	assert.Equal(t, "2026-10-12", d.String())

	assert.Error(t, d.UnmarshalTOML(int64(3)))
}

// ---- Mode -------------------------------------------------------------------

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "calendar", want: ModeCalendar},
		{in: "working_days", want: ModeWorkingDays},
		{in: "Working-Days", want: ModeWorkingDays},
		{in: " CALENDAR ", want: ModeCalendar},
		{in: "lunar", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMode_FlagValue(t *testing.T) {
	t.Parallel()

	var m Mode
	require.NoError(t, m.Set("working-days"))
	assert.Equal(t, ModeWorkingDays, m)
	assert.Equal(t, "working_days", m.String())
	assert.Equal(t, "mode", m.Type())
	assert.Error(t, m.Set("fortnightly"))
	assert.Equal(t, ModeWorkingDays, m, "failed Set must not change the value")
}

func TestNew_InvalidMode(t *testing.T) {
	t.Parallel()

	_, err := New(Mode("sideways"), nil)
	assert.Error(t, err)
}

// ---- AddDays ----------------------------------------------------------------

func TestAddDays_CalendarMode(t *testing.T) {
	t.Parallel()

	c := mustCalendar(t, ModeCalendar, []Date{MustParseDate("2026-10-13")})
	mon := MustParseDate("2026-10-12")

	got, err := c.AddDays(mon, 5)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", got.String(), "calendar mode ignores weekends")

	got, err = c.AddDays(mon, -3)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-09", got.String())

	got, err = c.AddDays(mon, 1)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-13", got.String(), "calendar mode ignores holidays")
}

func TestAddDays_WorkingDays(t *testing.T) {
	t.Parallel()

	c := mustCalendar(t, ModeWorkingDays, []Date{MustParseDate("2026-12-25")})

	tests := []struct {
		name  string
		start string
		n     int
		want  string
	}{
		{name: "zero on working day", start: "2026-10-12", n: 0, want: "2026-10-12"},
		{name: "one week", start: "2026-10-12", n: 5, want: "2026-10-19"},
		{name: "friday plus one", start: "2026-10-16", n: 1, want: "2026-10-19"},
		{name: "saturday snaps forward", start: "2026-10-17", n: 0, want: "2026-10-19"},
		{name: "backwards over weekend", start: "2026-10-19", n: -1, want: "2026-10-16"},
		{name: "skips holiday", start: "2026-12-24", n: 1, want: "2026-12-28"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := c.AddDays(MustParseDate(tt.start), tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.True(t, c.IsWorkingDay(got))
		})
	}
}

func TestAddDays_DisconnectedCalendarFailsFast(t *testing.T) {
	t.Parallel()

	holidays := []Date{
		MustParseDate("2026-10-19"),
		MustParseDate("2026-10-20"),
		MustParseDate("2026-10-21"),
	}
	c := mustCalendar(t, ModeWorkingDays, holidays, WithMaxGap(3))

	_, err := c.AddDays(MustParseDate("2026-10-16"), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoWorkingDays))
}

// ---- WorkingDuration --------------------------------------------------------

func TestWorkingDuration(t *testing.T) {
	t.Parallel()

	working := mustCalendar(t, ModeWorkingDays, []Date{MustParseDate("2026-12-25")})
	plain := mustCalendar(t, ModeCalendar, nil)
	mon := MustParseDate("2026-10-12")
	nextMon := MustParseDate("2026-10-19")

	n, err := working.WorkingDuration(mon, nextMon)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = working.WorkingDuration(nextMon, mon)
	require.NoError(t, err)
	assert.Equal(t, -5, n)

	n, err = working.WorkingDuration(MustParseDate("2026-12-21"), MustParseDate("2026-12-28"))
	require.NoError(t, err)
	assert.Equal(t, 4, n, "christmas is not counted")

	n, err = plain.WorkingDuration(mon, nextMon)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestWorkingDuration_InvertsAddDays(t *testing.T) {
	t.Parallel()

	c := mustCalendar(t, ModeWorkingDays, []Date{MustParseDate("2026-11-26")})
	start := MustParseDate("2026-10-12")
	for n := 0; n < 60; n++ {
		end, err := c.AddDays(start, n)
		require.NoError(t, err)
		got, err := c.WorkingDuration(start, end)
		require.NoError(t, err)
		assert.Equal(t, n, got, "n=%d end=%s", n, end)
	}
}

func TestHolidays_Sorted(t *testing.T) {
	t.Parallel()

	c := mustCalendar(t, ModeWorkingDays, []Date{
		MustParseDate("2026-12-25"),
		MustParseDate("2026-01-01"),
		MustParseDate("2026-12-25"),
	})
	assert.Equal(t, []Date{MustParseDate("2026-01-01"), MustParseDate("2026-12-25")}, c.Holidays())
}
