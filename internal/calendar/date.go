// Package calendar provides a day-granularity date type and the sprint time
// window arithmetic built on it.
package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Layout is the textual form of a Date in JSON, SQL and CLI arguments.
const Layout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day, stored as the number of days since 1970-01-01.
// It carries no time of day and no time zone, so equality and ordering are
// plain integer comparisons.
type Date int32

// New returns the Date for the given year, month and day. Out-of-range
// values are normalized the way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return fromUnix(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix())
}

// FromTime returns the calendar day of t as observed in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// In returns the calendar day of t as observed in loc. A nil loc means UTC.
func In(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(t.In(loc))
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) Date {
	return In(time.Now(), loc)
}

// Parse parses a date in Layout form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", s, err)
	}
	return FromTime(t), nil
}

func fromUnix(sec int64) Date {
	days := sec / secondsPerDay
	if sec%secondsPerDay < 0 {
		days--
	}
	return Date(days)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// Dates outside [MinDate, MaxDate] have no four-digit Layout form.
var (
	MinDate = New(1, time.January, 1)
	MaxDate = New(9999, time.December, 31)
)

// ErrOutOfRange is returned by AddDaysChecked when the result would fall
// outside [MinDate, MaxDate].
var ErrOutOfRange = errors.New("date out of range")

// AddDays returns the day n days after d (before d when n is negative).
// The caller must keep the result within [MinDate, MaxDate]; larger offsets
// wrap around. Use AddDaysChecked for offsets that come from user input.
func (d Date) AddDays(n int) Date {
	return d + Date(n)
}

// AddDaysChecked is AddDays that fails with ErrOutOfRange instead of
// leaving [MinDate, MaxDate].
func (d Date) AddDaysChecked(n int) (Date, error) {
	if n < int(MinDate)-int(d) || n > int(MaxDate)-int(d) {
		return d, fmt.Errorf("%s %+d days: %w", d, n, ErrOutOfRange)
	}
	return d + Date(n), nil
}

// Sub returns the number of days from u to d. It cannot overflow: both
// operands widen to int before subtracting.
func (d Date) Sub(u Date) int {
	return int(d) - int(u)
}

// Before reports whether d is strictly earlier than u.
func (d Date) Before(u Date) bool { return d < u }

// After reports whether d is strictly later than u.
func (d Date) After(u Date) bool { return d > u }

// String returns the date in Layout form.
func (d Date) String() string {
	return d.Time().Format(Layout)
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or a full RFC 3339 timestamp, keeping
// only the calendar day of the latter.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = FromTime(t)
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so a Date binds to a DATE column.
func (d Date) Value() (driver.Value, error) {
	return d.Time(), nil
}

// Scan implements sql.Scanner for DATE and TIMESTAMP columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = FromTime(v)
	case string:
		p, err := Parse(v)
		if err != nil {
			return err
		}
		*d = p
	case []byte:
		p, err := Parse(string(v))
		if err != nil {
			return err
		}
		*d = p
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
	return nil
}
