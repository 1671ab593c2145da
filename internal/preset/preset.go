// Package preset resolves named date-range shortcuts ("next month",
// "today") into concrete calendar ranges.
package preset

import (
	"fmt"
	"time"

	"github.com/pkordes/gigboard/internal/calendar"
)

// Kind names a preset.
type Kind string

const (
	Any         Kind = "any"
	Today       Kind = "today"
	NextMonth   Kind = "next-month"
	Next3Months Kind = "next-3-months"
	Specific    Kind = "specific"
	Custom      Kind = "range"
)

// Epoch is the lower bound used by Any. The upstream API treats a missing
// from_date as "from today", so "any date" has to be an explicit past bound.
var Epoch = calendar.Date{Year: 1950, Month: time.January, Day: 1}

// Kinds lists every preset in the order they are offered to users.
var Kinds = []Kind{Any, Today, NextMonth, Next3Months, Specific, Custom}

// Preset is a Kind plus, for Specific and Custom, the caller-chosen range.
// For Specific only Range.From is read.
type Preset struct {
	Kind  Kind           `json:"kind"`
	Range calendar.Range `json:"range,omitzero"`
}

// ParseKind validates a preset name. The empty string maps to Today.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return Today, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown date preset %q", s)
}

// Resolve maps p to a concrete range relative to now. It is a pure
// function: the same (p, now) always yields the same range.
//
// Today resolves to a fully open range, which the upstream API reads as
// "from today onward". NextMonth and Next3Months use calendar.Date.AddMonths,
// so a month-end start date is clamped to the target month's last day.
func Resolve(p Preset, now time.Time) calendar.Range {
	today := calendar.FromTime(now)

	switch p.Kind {
	case Any:
		from := Epoch
		return calendar.Range{From: &from}
	case NextMonth:
		return calendar.Between(today, today.AddMonths(1))
	case Next3Months:
		return calendar.Between(today, today.AddMonths(3))
	case Specific:
		if p.Range.From == nil {
			return calendar.Range{}
		}
		return calendar.Between(*p.Range.From, *p.Range.From)
	case Custom:
		return p.Range
	default:
		return calendar.Range{}
	}
}
