package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/gigboard/internal/calendar"
	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/upstream"
)

// newTestClient starts an httptest server running h and returns a Client
// pointed at it. The server is closed when the test ends.
func newTestClient(t *testing.T, h http.HandlerFunc, opts ...upstream.Option) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := upstream.New(srv.URL+"/api", time.Second, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := upstream.New("/api", time.Second)
	assert.Error(t, err)
}

func TestEventQuery_Values(t *testing.T) {
	from := calendar.MustParse("2026-02-11")
	to := calendar.MustParse("2026-03-11")
	q := upstream.EventQuery{
		Filter: domain.EventFilter{
			Search:     []string{"punk", "ska"},
			GenreIDs:   []int{3, 7},
			CountryIDs: []int{1},
			From:       &from,
			To:         &to,
			SortBy:     "start_date",
			SortOrder:  "asc",
		},
		Limit:  20,
		Offset: 40,
	}

	v := q.Values()

	assert.Equal(t, "punk,ska", v.Get("search"))
	assert.Equal(t, "3,7", v.Get("genre_id"))
	assert.Equal(t, "1", v.Get("country_id"))
	assert.False(t, v.Has("category_id"))
	assert.Equal(t, "2026-02-11", v.Get("from_date"))
	assert.Equal(t, "2026-03-11", v.Get("to_date"))
	assert.Equal(t, "start_date", v.Get("sort_by"))
	assert.Equal(t, "asc", v.Get("sort_order"))
	assert.Equal(t, "20", v.Get("limit"))
	assert.Equal(t, "40", v.Get("offset"))
}

func TestListEvents(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/events", r.URL.Path)
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, map[string]any{
			"data": []map[string]any{
				{"id": 1, "name": "Punk Night", "start_date": "2026-06-15"},
				{"id": 2, "name": "Ska Fest", "start_date": "2026-06-15", "end_date": "2026-06-17"},
			},
			"meta": map[string]any{"limit": 2, "total": 5, "offset": 0, "category_counts": map[string]int{"1": 4}},
		})
	}, upstream.WithToken("s3cret"))

	page, err := c.ListEvents(context.Background(), upstream.EventQuery{Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assert.Equal(t, "2", gotQuery.Get("limit"))
	assert.Equal(t, "0", gotQuery.Get("offset"))
	require.Len(t, page.Data, 2)
	assert.Equal(t, "2026-06-17", page.Data[1].EndDate)
	assert.Equal(t, domain.EventMeta{Limit: 2, Total: 5, Offset: 0, CategoryCounts: map[string]int{"1": 4}}, page.Meta)
}

func TestListEvents_NullDataBecomesEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"data": nil, "meta": map[string]any{"limit": 20, "total": 0, "offset": 0}})
	})

	page, err := c.ListEvents(context.Background(), upstream.EventQuery{Limit: 20})

	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

func TestListEvents_StatusErrors(t *testing.T) {
	for _, tc := range []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusInternalServerError, domain.ErrUpstream},
		{http.StatusBadGateway, domain.ErrUpstream},
	} {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			})

			_, err := c.ListEvents(context.Background(), upstream.EventQuery{})

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			var se *upstream.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.status, se.Status)
		})
	}
}

func TestListEvents_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := c.ListEvents(context.Background(), upstream.EventQuery{})

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestListEvents_TimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := upstream.New(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	_, err = c.ListEvents(context.Background(), upstream.EventQuery{})

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Less(t, time.Since(start), time.Second)
}

func TestListEvents_CallerCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListEvents(ctx, upstream.EventQuery{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrUpstream)
}

func TestGetEvent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/events/42", r.URL.Path)
		writeJSON(t, w, map[string]any{"data": map[string]any{"id": 42, "name": "Oi Fest", "start_date": "2026-08-01"}})
	})

	ev, err := c.GetEvent(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, 42, ev.ID)
	assert.Equal(t, "Oi Fest", ev.Name)
}

func TestEventDates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "true", r.URL.Query().Get("dates"))
		writeJSON(t, w, map[string]any{"success": true, "data": []string{"2026-06-15", "2026-06-20"}})
	})

	dates, err := c.EventDates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-06-15", "2026-06-20"}, dates)
}

func TestEventDates_Unsuccessful(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"success": false})
	})

	_, err := c.EventDates(context.Background())

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestListBands(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bands", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "Mad Sin", q.Get("search"))
		writeJSON(t, w, map[string]any{
			"bands": []map[string]any{{"id": 7, "name": "Mad Sin"}},
			"total": 11,
			"pages": 2,
		})
	})

	page, err := c.ListBands(context.Background(), 2, 10, "Mad Sin")

	require.NoError(t, err)
	assert.Equal(t, domain.BandPage{Bands: []domain.Band{{ID: 7, Name: "Mad Sin"}}, Total: 11, Pages: 2}, page)
}

func TestSearchBands(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bands/search", r.URL.Path)
		assert.Equal(t, "Berlin", r.URL.Query().Get("q"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		writeJSON(t, w, map[string]any{"results": []map[string]any{{"id": 3, "name": "Berlin Punks"}}})
	})

	bands, err := c.SearchBands(context.Background(), "Berlin", 25)

	require.NoError(t, err)
	assert.Equal(t, []domain.Band{{ID: 3, Name: "Berlin Punks"}}, bands)
}
