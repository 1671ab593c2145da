// Package calendar implements calendar dates without a time-of-day or
// timezone component, plus the human-readable formats used on event cards.
// It has no dependencies outside the standard library and is imported by
// the preset, service, feed, and handler packages.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// layout is the wire format shared with the upstream API.
const layout = "2006-01-02"

// ErrInvertedRange is returned by Range.Validate when From is after To.
var ErrInvertedRange = errors.New("from date is after to date")

// Date is a logical (year, month, day) triple.
// The zero value is not a valid date; use Parse, New, or FromTime.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a Date and reports whether the components name a real day.
// Components that would roll over (Feb 30, Apr 31) are rejected.
func New(year int, month time.Month, day int) (Date, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return Date{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// Parse reads a strict "YYYY-MM-DD" string.
// It returns false for any other shape: wrong separators, a time suffix,
// non-digit characters, or a day that does not exist in that month.
// Parse never panics and never returns an error; callers decide how to
// degrade when a date cannot be rendered.
func Parse(s string) (Date, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return Date{}, false
	}

	var nums [3]int
	for i, p := range parts {
		if !allDigits(p) {
			return Date{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}

	return New(nums[0], time.Month(nums[1]), nums[2])
}

// MustParse is Parse for literals in tests and fixed sentinels.
// It panics on malformed input.
func MustParse(s string) Date {
	d, ok := Parse(s)
	if !ok {
		panic("calendar: invalid date " + strconv.Quote(s))
	}
	return d
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// String formats d as "YYYY-MM-DD", zero-padding month and day.
// For every valid input x, Parse(x) followed by String returns x.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week d falls on.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Compare returns -1, 0, or +1 depending on whether d is before, equal to,
// or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddMonths adds n to the month field, carrying into the year as needed.
// The day of month is kept when the target month is long enough and
// clamped to the target month's last day otherwise, so Jan 31 + 1 month
// is Feb 28 (or Feb 29 in a leap year).
func (d Date) AddMonths(n int) Date {
	total := d.Year*12 + int(d.Month-1) + n
	year := floorDiv(total, 12)
	month := time.Month(total-year*12) + 1

	day := d.Day
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalText implements encoding.TextMarshaler so Date encodes as
// "YYYY-MM-DD" in JSON bodies and query strings.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with Parse semantics.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, ok := Parse(string(b))
	if !ok {
		return fmt.Errorf("calendar: invalid date %q", string(b))
	}
	*d = parsed
	return nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
