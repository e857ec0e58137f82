// Package date converts between the local wall-clock values a person types
// and the UTC instants stored in the ledger, and provides calendar days,
// periods and ranges used to filter readings.
package date

import (
	"fmt"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent days as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// LocalFormat is the minute precise wall-clock layout used to enter and edit readings.
const LocalFormat = "2006-01-02T15:04"

// InstantFormat is the layout of stored instants: always UTC, millisecond precision.
const InstantFormat = "2006-01-02T15:04:05.000Z07:00"

const Day = 24 * time.Hour

// ParseLocal parses a wall-clock value in LocalFormat, interpreted in loc, and
// returns the corresponding UTC instant.
func ParseLocal(str string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(LocalFormat, str, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid local date %q want format %q: %w", str, LocalFormat, err)
	}
	return t.UTC(), nil
}

// FormatLocal formats the instant t as a wall-clock value in loc.
// FormatLocal(ParseLocal(s)) == s for every valid s.
func FormatLocal(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(LocalFormat)
}

// ParseInstant parses an instant as found in a document: RFC 3339 with or
// without fractional seconds, or a LocalFormat value interpreted in loc.
// The result is in UTC.
func ParseInstant(str string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
		return t.UTC().Truncate(time.Millisecond), nil
	}
	t, err := ParseLocal(str, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instant %q want RFC 3339 or %q", str, LocalFormat)
	}
	return t, nil
}

// FormatInstant formats t in the canonical stored form, e.g. "2024-01-01T07:00:00.000Z".
func FormatInstant(t time.Time) string { return t.UTC().Format(InstantFormat) }

// Date represent a date with no lower than day granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.time().Month() }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// ISOWeek returns the ISO 8601 year and week number in which d occurs.
func (d Date) ISOWeek() (year, week int) { return d.time().ISOWeek() }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Of returns the day the instant t falls on in loc.
func Of(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return New(t.In(loc).Date())
}

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// Format formats the day using a time layout.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}
