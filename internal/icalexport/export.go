// Package icalexport renders event lists as an iCalendar feed so users can
// subscribe to a filtered event browser from their calendar app.
package icalexport

import (
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pkordes/gigboard/internal/calendar"
	"github.com/pkordes/gigboard/internal/domain"
)

// ProductID identifies gigboard as the feed producer.
const ProductID = "-//gigboard//events//EN"

// UIDDomain is the right-hand side of every VEVENT UID.
const UIDDomain = "gigboard"

// Build returns a VCALENDAR with one all-day VEVENT per event. DTEND is
// the day after the last event day, as iCalendar all-day ends are
// exclusive. Events whose start date cannot be parsed are skipped; an
// unreadable end date is treated as a single-day event.
func Build(events []domain.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, ev := range events {
		start, ok := calendar.Parse(ev.StartDate)
		if !ok {
			continue
		}
		end := start
		if e, ok := calendar.Parse(ev.EndDate); ok && !e.Before(start) {
			end = e
		}

		vev := cal.AddEvent(UID(ev.ID))
		vev.SetDtStampTime(stamp.UTC())
		vev.SetSummary(ev.Name)
		vev.SetAllDayStartAt(start.Time())
		vev.SetAllDayEndAt(end.AddDays(1).Time())
		if loc := location(ev); loc != "" {
			vev.SetLocation(loc)
		}
		if ev.URL != "" {
			vev.SetURL(ev.URL)
		}
		if len(ev.Bands) > 0 {
			vev.SetDescription(lineup(ev.Bands))
		}
	}

	return cal.Serialize()
}

// UID returns the stable VEVENT UID for an event ID.
func UID(id int) string {
	return "event-" + strconv.Itoa(id) + "@" + UIDDomain
}

func location(ev domain.Event) string {
	switch {
	case ev.Venue != "" && ev.City != "":
		return ev.Venue + ", " + ev.City
	case ev.Venue != "":
		return ev.Venue
	default:
		return ev.City
	}
}

func lineup(bands []domain.Band) string {
	names := make([]string, len(bands))
	for i, b := range bands {
		names[i] = b.Name
	}
	return "Line-up: " + strings.Join(names, ", ")
}
