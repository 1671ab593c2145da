// Package domain contains the core data types shared by the gigboard
// services, the upstream client, and the HTTP handlers.
package domain

import (
	"encoding/json"

	"github.com/pkordes/gigboard/internal/calendar"
)

// Event is a listing owned by the upstream API. Gigboard never mutates it;
// it only decorates it for display and re-fetches it.
//
// StartDate and EndDate stay as the raw "YYYY-MM-DD" strings received from
// upstream. They are parsed where they are rendered.
type Event struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date,omitempty"`
	Venue      string `json:"venue,omitempty"`
	City       string `json:"city,omitempty"`
	CountryID  int    `json:"country_id,omitempty"`
	CategoryID int    `json:"category_id,omitempty"`
	URL        string `json:"url,omitempty"`
	Bands      []Band `json:"bands,omitempty"`

	// Set by the service layer, never by upstream.
	DisplayDate string `json:"display_date,omitempty"`
	LongDate    string `json:"long_date,omitempty"`
}

// EventMeta is the pagination block of an upstream event list response.
type EventMeta struct {
	Limit          int            `json:"limit"`
	Total          int            `json:"total"`
	Offset         int            `json:"offset"`
	CategoryCounts map[string]int `json:"category_counts,omitempty"`
}

// EventPage is one upstream page of events.
type EventPage struct {
	Data []Event   `json:"data"`
	Meta EventMeta `json:"meta"`
}

// EventFilter is every user-selectable filter on the event browser.
// Paging state is deliberately not part of it: two filters with the same
// Key select the same result set.
type EventFilter struct {
	Search      []string       `json:"search,omitempty"`
	CountryIDs  []int          `json:"country_id,omitempty"`
	CategoryIDs []int          `json:"category_id,omitempty"`
	GenreIDs    []int          `json:"genre_id,omitempty"`
	From        *calendar.Date `json:"from_date,omitempty"`
	To          *calendar.Date `json:"to_date,omitempty"`
	SortBy      string         `json:"sort_by,omitempty"`
	SortOrder   string         `json:"sort_order,omitempty"`
}

// Key returns a serialized form of f used for structural equality.
func (f EventFilter) Key() string {
	b, err := json.Marshal(f)
	if err != nil {
		// Every field is a plain value; Marshal cannot fail here.
		panic("domain: marshal event filter: " + err.Error())
	}
	return string(b)
}

// SetRange copies r's bounds into the filter.
func (f *EventFilter) SetRange(r calendar.Range) {
	f.From, f.To = r.From, r.To
}
