// Package handler implements the HTTP surface of the gigboard API.
// All handlers are methods on Server. Methods are split into
// domain-specific files (health.go, events.go, bands.go, feeds.go) but all
// share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/gigboard/internal/calendar"
	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/feed"
	"github.com/pkordes/gigboard/internal/service"
)

// EventServicer defines the event operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the upstream API.
type EventServicer interface {
	List(ctx context.Context, req service.EventListRequest) (service.EventList, error)
	Get(ctx context.Context, id int) (domain.Event, error)
	Dates(ctx context.Context) ([]calendar.Date, error)
	ResolveFilter(req service.EventListRequest) (domain.EventFilter, error)
	Decorate(ctx context.Context, events []domain.Event) []domain.Event
}

// BandServicer defines the band operations the handlers depend on.
type BandServicer interface {
	Search(ctx context.Context, raw string, limit int) ([]domain.Band, error)
	List(ctx context.Context, raw string, p domain.PaginationParams) (service.BandList, error)
}

// FeedStore holds the server-side infinite-scroll sessions.
type FeedStore interface {
	Create(ctx context.Context, f domain.EventFilter) (uuid.UUID, feed.State, error)
	Get(id uuid.UUID) (feed.State, error)
	LoadMore(ctx context.Context, id uuid.UUID) (feed.State, error)
	Delete(id uuid.UUID) error
}

// Server serves every API endpoint.
// Wire it in main.go by mounting Handler() on the root router.
type Server struct {
	events EventServicer
	bands  BandServicer
	feeds  FeedStore
	log    *slog.Logger
	now    func() time.Time
}

// NewServer constructs the Server with all its dependencies.
// Any servicer may be nil if the routes using it are never hit.
func NewServer(events EventServicer, bands BandServicer, feeds FeedStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{events: events, bands: bands, feeds: feeds, log: log, now: time.Now}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/events", s.ListEvents)
	r.Get("/events.ics", s.ExportEvents)
	r.Get("/events/dates", s.ListEventDates)
	r.Get("/events/{id}", s.GetEvent)

	r.Get("/bands", s.ListBands)
	r.Get("/bands/search", s.SearchBands)

	r.Post("/feeds", s.CreateFeed)
	r.Get("/feeds/{id}", s.GetFeed)
	r.Post("/feeds/{id}/more", s.LoadMoreFeed)
	r.Delete("/feeds/{id}", s.DeleteFeed)
}

// Handler returns a chi router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
