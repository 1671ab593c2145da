package handler

import (
	"net/http"

	"github.com/pkordes/gigboard/internal/calendar"
	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/icalexport"
	"github.com/pkordes/gigboard/internal/service"
)

// EventListResponse is the body of GET /events.
type EventListResponse struct {
	Data           []domain.Event  `json:"data"`
	Pagination     domain.PageMeta `json:"pagination"`
	CategoryCounts map[string]int  `json:"category_counts,omitempty"`
}

// EventDatesResponse is the body of GET /events/dates.
type EventDatesResponse struct {
	Dates []calendar.Date `json:"dates"`
}

// ListEvents handles GET /events.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, ok := s.listEvents(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, EventListResponse{
		Data:           list.Events,
		Pagination:     list.Pagination,
		CategoryCounts: list.CategoryCounts,
	})
}

// ExportEvents handles GET /events.ics.
// Accepts the same filters as GET /events and returns that page of events
// as an iCalendar feed.
func (s *Server) ExportEvents(w http.ResponseWriter, r *http.Request) {
	list, ok := s.listEvents(w, r)
	if !ok {
		return
	}
	body := icalexport.Build(list.Events, s.now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write([]byte(body))
}

// listEvents binds the filter and paging parameters and runs the query,
// writing the error response itself when it fails.
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) (service.EventList, bool) {
	q := r.URL.Query()
	in, err := filterFromQuery(q)
	if err != nil {
		requestError(w, err.Error())
		return service.EventList{}, false
	}
	req, err := in.eventRequest()
	if err != nil {
		requestError(w, err.Error())
		return service.EventList{}, false
	}
	req.Page, err = pageParams(q)
	if err != nil {
		requestError(w, err.Error())
		return service.EventList{}, false
	}

	res, err := s.events.List(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return service.EventList{}, false
	}
	return res, true
}

// GetEvent handles GET /events/{id}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := intPathParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	ev, err := s.events.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// ListEventDates handles GET /events/dates.
// Returns every date that has at least one event, for calendar highlighting.
func (s *Server) ListEventDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.events.Dates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if dates == nil {
		dates = []calendar.Date{}
	}
	writeJSON(w, http.StatusOK, EventDatesResponse{Dates: dates})
}
