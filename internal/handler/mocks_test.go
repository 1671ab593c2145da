package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/gigboard/internal/calendar"
	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/feed"
	"github.com/pkordes/gigboard/internal/handler"
	"github.com/pkordes/gigboard/internal/service"
)

// mockEventServicer is a test double for handler.EventServicer.
// Set only the method fields your test needs. Decorate defaults to the
// identity function and ResolveFilter to copying the request filter.
type mockEventServicer struct {
	list          func(ctx context.Context, req service.EventListRequest) (service.EventList, error)
	get           func(ctx context.Context, id int) (domain.Event, error)
	dates         func(ctx context.Context) ([]calendar.Date, error)
	resolveFilter func(req service.EventListRequest) (domain.EventFilter, error)
}

func (m *mockEventServicer) List(ctx context.Context, req service.EventListRequest) (service.EventList, error) {
	return m.list(ctx, req)
}
func (m *mockEventServicer) Get(ctx context.Context, id int) (domain.Event, error) {
	return m.get(ctx, id)
}
func (m *mockEventServicer) Dates(ctx context.Context) ([]calendar.Date, error) {
	return m.dates(ctx)
}
func (m *mockEventServicer) ResolveFilter(req service.EventListRequest) (domain.EventFilter, error) {
	if m.resolveFilter == nil {
		return req.Filter, nil
	}
	return m.resolveFilter(req)
}
func (m *mockEventServicer) Decorate(_ context.Context, events []domain.Event) []domain.Event {
	return events
}

// mockBandServicer is a test double for handler.BandServicer.
type mockBandServicer struct {
	search func(ctx context.Context, raw string, limit int) ([]domain.Band, error)
	list   func(ctx context.Context, raw string, p domain.PaginationParams) (service.BandList, error)
}

func (m *mockBandServicer) Search(ctx context.Context, raw string, limit int) ([]domain.Band, error) {
	return m.search(ctx, raw, limit)
}
func (m *mockBandServicer) List(ctx context.Context, raw string, p domain.PaginationParams) (service.BandList, error) {
	return m.list(ctx, raw, p)
}

// mockFeedStore is a test double for handler.FeedStore.
type mockFeedStore struct {
	create   func(ctx context.Context, f domain.EventFilter) (uuid.UUID, feed.State, error)
	get      func(id uuid.UUID) (feed.State, error)
	loadMore func(ctx context.Context, id uuid.UUID) (feed.State, error)
	delete   func(id uuid.UUID) error
}

func (m *mockFeedStore) Create(ctx context.Context, f domain.EventFilter) (uuid.UUID, feed.State, error) {
	return m.create(ctx, f)
}
func (m *mockFeedStore) Get(id uuid.UUID) (feed.State, error) { return m.get(id) }
func (m *mockFeedStore) LoadMore(ctx context.Context, id uuid.UUID) (feed.State, error) {
	return m.loadMore(ctx, id)
}
func (m *mockFeedStore) Delete(id uuid.UUID) error { return m.delete(id) }

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.EventServicer = (*mockEventServicer)(nil)
	_ handler.BandServicer  = (*mockBandServicer)(nil)
	_ handler.FeedStore     = (*mockFeedStore)(nil)
)

// ---- helpers ---------------------------------------------------------------

// serve runs one request through the Server's router, exactly as main.go
// mounts it in production.
func serve(srv *handler.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
