// Package service contains the business logic behind the gigboard API.
// Services validate inputs, resolve date presets, and decorate upstream
// records for display. No HTTP lives here: services depend on small
// source interfaces that the upstream client satisfies.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/gigboard/internal/calendar"
	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/preset"
	"github.com/pkordes/gigboard/internal/upstream"
)

// EventSource is the upstream surface EventService depends on.
type EventSource interface {
	ListEvents(ctx context.Context, q upstream.EventQuery) (domain.EventPage, error)
	GetEvent(ctx context.Context, id int) (domain.Event, error)
}

// EventListRequest is one event browser query.
// Filter.From and Filter.To are ignored; the range comes from Preset.
type EventListRequest struct {
	Preset preset.Preset
	Filter domain.EventFilter
	Page   domain.PaginationParams
}

// EventList is one page of decorated events.
type EventList struct {
	Events         []domain.Event
	Pagination     domain.PageMeta
	CategoryCounts map[string]int
}

// EventService implements the event browser's read operations.
type EventService struct {
	events EventSource
	dates  *DateCache
	now    func() time.Time
	log    *slog.Logger
}

// NewEventService constructs an EventService. dates may be nil for callers
// that never serve the calendar, in which case Dates returns an error.
func NewEventService(events EventSource, dates *DateCache, log *slog.Logger) *EventService {
	if log == nil {
		log = slog.Default()
	}
	return &EventService{events: events, dates: dates, now: time.Now, log: log}
}

// WithClock replaces the service's time source. Intended for tests.
func (s *EventService) WithClock(now func() time.Time) *EventService {
	s.now = now
	return s
}

// ResolveFilter applies req's preset to its filter and validates the range.
func (s *EventService) ResolveFilter(req EventListRequest) (domain.EventFilter, error) {
	r := preset.Resolve(req.Preset, s.now())
	if err := r.Validate(); err != nil {
		return domain.EventFilter{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	f := req.Filter
	f.SetRange(r)
	return f, nil
}

// List returns one page of events matching req.
// Events whose start date cannot be parsed are left out.
func (s *EventService) List(ctx context.Context, req EventListRequest) (EventList, error) {
	f, err := s.ResolveFilter(req)
	if err != nil {
		return EventList{}, fmt.Errorf("service.EventService.List: %w", err)
	}

	page, err := s.events.ListEvents(ctx, upstream.EventQuery{
		Filter: f,
		Limit:  req.Page.Limit,
		Offset: req.Page.Offset(),
	})
	if err != nil {
		return EventList{}, fmt.Errorf("service.EventService.List: %w", err)
	}

	limit := page.Meta.Limit
	if limit <= 0 {
		limit = req.Page.Limit
	}
	return EventList{
		Events:         s.Decorate(ctx, page.Data),
		Pagination:     domain.NewPageMeta(limit, page.Meta.Total, page.Meta.Offset),
		CategoryCounts: page.Meta.CategoryCounts,
	}, nil
}

// Get returns a single decorated event.
func (s *EventService) Get(ctx context.Context, id int) (domain.Event, error) {
	if id <= 0 {
		return domain.Event{}, fmt.Errorf("service.EventService.Get: %w: id must be positive", domain.ErrValidation)
	}
	ev, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Get: %w", err)
	}
	decorated := s.Decorate(ctx, []domain.Event{ev})
	if len(decorated) == 0 {
		return domain.Event{}, fmt.Errorf("service.EventService.Get: %w: event %d has an unreadable start date",
			domain.ErrUpstream, id)
	}
	return decorated[0], nil
}

// Dates returns every date with at least one event.
func (s *EventService) Dates(ctx context.Context) ([]calendar.Date, error) {
	if s.dates == nil {
		return nil, errors.New("service.EventService.Dates: date cache not configured")
	}
	dates, err := s.dates.Dates(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.EventService.Dates: %w", err)
	}
	return dates, nil
}

// Decorate fills DisplayDate and LongDate on each event, dropping events
// that cannot be rendered. The input slice is not modified.
func (s *EventService) Decorate(ctx context.Context, events []domain.Event) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if _, ok := calendar.Parse(ev.StartDate); !ok {
			s.log.DebugContext(ctx, "skipping event with unreadable start date",
				"event_id", ev.ID,
				"start_date", ev.StartDate,
			)
			continue
		}
		ev.DisplayDate = calendar.FormatEventDate(ev.StartDate, ev.EndDate)
		ev.LongDate = calendar.FormatLongDate(ev.StartDate)
		out = append(out, ev)
	}
	return out
}
