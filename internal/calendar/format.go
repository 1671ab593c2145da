package calendar

import (
	"fmt"
	"strconv"
)

// InvalidDate is rendered in place of a date that cannot be parsed.
const InvalidDate = "Invalid date"

// FormatEventDate renders an event's start and optional end date for a card.
//
//	single day            15 Jun 2026
//	same month and year   15-17 Jun 2026
//	same year             30 Apr - 1 May 2026
//	different years       31 Dec 2025 - 1 Jan 2026
//
// An empty or unparseable end falls back to the start alone; an
// unparseable start yields InvalidDate.
func FormatEventDate(start, end string) string {
	s, ok := Parse(start)
	if !ok {
		return InvalidDate
	}
	if end == "" {
		return FormatSpan(s, s)
	}
	e, ok := Parse(end)
	if !ok {
		return FormatSpan(s, s)
	}
	return FormatSpan(s, e)
}

// FormatSpan is FormatEventDate for already-parsed dates.
func FormatSpan(start, end Date) string {
	switch {
	case start == end:
		return fmt.Sprintf("%d %s %d", start.Day, shortMonth(start), start.Year)
	case start.Year == end.Year && start.Month == end.Month:
		return fmt.Sprintf("%d-%d %s %d", start.Day, end.Day, shortMonth(start), start.Year)
	case start.Year == end.Year:
		return fmt.Sprintf("%d %s - %d %s %d", start.Day, shortMonth(start), end.Day, shortMonth(end), end.Year)
	default:
		return fmt.Sprintf("%d %s %d - %d %s %d",
			start.Day, shortMonth(start), start.Year, end.Day, shortMonth(end), end.Year)
	}
}

// FormatLongDate renders "Saturday, May 23rd 2026", or InvalidDate.
func FormatLongDate(s string) string {
	d, ok := Parse(s)
	if !ok {
		return InvalidDate
	}
	return LongDate(d)
}

// LongDate is FormatLongDate for an already-parsed date.
func LongDate(d Date) string {
	return fmt.Sprintf("%s, %s %s %d", d.Weekday(), d.Month, Ordinal(d.Day), d.Year)
}

// Ordinal returns n with its English suffix: 1st, 2nd, 3rd, 4th, 11th, 21st.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func shortMonth(d Date) string {
	return d.Month.String()[:3]
}
