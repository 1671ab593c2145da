package feed_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/feed"
	"github.com/pkordes/gigboard/internal/upstream"
)

// mockLister is a test double for feed.Lister that counts calls.
type mockLister struct {
	calls atomic.Int32
	list  func(ctx context.Context, q upstream.EventQuery) (domain.EventPage, error)
}

func (m *mockLister) ListEvents(ctx context.Context, q upstream.EventQuery) (domain.EventPage, error) {
	m.calls.Add(1)
	return m.list(ctx, q)
}

// compile-time check: mockLister must satisfy feed.Lister.
var _ feed.Lister = (*mockLister)(nil)

// ---- helpers ---------------------------------------------------------------

func events(ids ...int) []domain.Event {
	out := make([]domain.Event, len(ids))
	for i, id := range ids {
		out[i] = domain.Event{ID: id, Name: "event", StartDate: "2026-06-15"}
	}
	return out
}

func ids(evs []domain.Event) []int {
	out := make([]int, len(evs))
	for i, ev := range evs {
		out[i] = ev.ID
	}
	return out
}

// pagedLister serves pages keyed by offset with a fixed total.
func pagedLister(limit, total int, pages map[int][]int) *mockLister {
	return &mockLister{list: func(_ context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		return domain.EventPage{
			Data: events(pages[q.Offset]...),
			Meta: domain.EventMeta{Limit: limit, Total: total, Offset: q.Offset},
		}, nil
	}}
}

var punk = domain.EventFilter{Search: []string{"punk"}}

// ---- infinite mode ---------------------------------------------------------

func TestLoadMore_DeduplicatesAcrossPages(t *testing.T) {
	l := pagedLister(2, 3, map[int][]int{0: {1, 2}, 2: {2}})
	a := feed.NewAggregator(l, feed.Infinite, 2)

	require.NoError(t, a.SetFilter(context.Background(), punk))
	fetched, err := a.LoadMore(context.Background())

	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, []int{1, 2}, ids(a.State().Events))
}

func TestLoadMore_AppendsInOrder(t *testing.T) {
	l := pagedLister(2, 5, map[int][]int{0: {5, 4}, 2: {3, 2}, 4: {1}})
	a := feed.NewAggregator(l, feed.Infinite, 2)

	require.NoError(t, a.SetFilter(context.Background(), punk))
	_, err := a.LoadMore(context.Background())
	require.NoError(t, err)
	_, err = a.LoadMore(context.Background())
	require.NoError(t, err)

	st := a.State()
	assert.Equal(t, []int{5, 4, 3, 2, 1}, ids(st.Events))
	assert.Equal(t, domain.PageMeta{Total: 5, Page: 3, Limit: 2, Pages: 3}, st.Pagination)
	assert.False(t, st.HasMore)
}

func TestLoadMore_StopsAtLastPage(t *testing.T) {
	l := pagedLister(2, 4, map[int][]int{0: {1, 2}, 2: {3, 4}})
	a := feed.NewAggregator(l, feed.Infinite, 2)

	require.NoError(t, a.SetFilter(context.Background(), punk))
	_, err := a.LoadMore(context.Background())
	require.NoError(t, err)
	require.False(t, a.State().HasMore)
	before := l.calls.Load()

	for range 3 {
		fetched, err := a.LoadMore(context.Background())
		require.NoError(t, err)
		assert.False(t, fetched)
	}

	assert.Equal(t, before, l.calls.Load(), "no requests after the last page")
}

func TestLoadMore_NoOpWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	l := &mockLister{list: func(_ context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		if q.Offset > 0 {
			entered <- struct{}{}
			<-release
		}
		return domain.EventPage{
			Data: events(q.Offset+1, q.Offset+2),
			Meta: domain.EventMeta{Limit: 2, Total: 10, Offset: q.Offset},
		}, nil
	}}
	a := feed.NewAggregator(l, feed.Infinite, 2)
	require.NoError(t, a.SetFilter(context.Background(), punk))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = a.LoadMore(context.Background())
	}()
	<-entered

	assert.True(t, a.State().Loading)
	fetched, err := a.LoadMore(context.Background())
	assert.NoError(t, err)
	assert.False(t, fetched)

	close(release)
	wg.Wait()

	assert.EqualValues(t, 2, l.calls.Load())
	assert.Equal(t, []int{1, 2, 3, 4}, ids(a.State().Events))
}

func TestLoadMore_FailureKeepsPriorResults(t *testing.T) {
	boom := errors.New("boom")
	l := &mockLister{list: func(_ context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		if q.Offset > 0 {
			return domain.EventPage{}, boom
		}
		return domain.EventPage{Data: events(1, 2), Meta: domain.EventMeta{Limit: 2, Total: 4}}, nil
	}}
	a := feed.NewAggregator(l, feed.Infinite, 2)
	require.NoError(t, a.SetFilter(context.Background(), punk))

	fetched, err := a.LoadMore(context.Background())

	assert.True(t, fetched)
	assert.ErrorIs(t, err, boom)
	st := a.State()
	assert.Equal(t, []int{1, 2}, ids(st.Events))
	assert.ErrorIs(t, st.Err, boom)
	assert.True(t, st.HasMore, "caller may retry")
}

func TestLoadMore_UpstreamCapsPageSize(t *testing.T) {
	var offsets []int
	l := &mockLister{list: func(_ context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		offsets = append(offsets, q.Offset)
		return domain.EventPage{
			Data: events(q.Offset+1, q.Offset+2),
			Meta: domain.EventMeta{Limit: 2, Total: 6},
		}, nil
	}}
	a := feed.NewAggregator(l, feed.Infinite, 4)
	require.NoError(t, a.SetFilter(context.Background(), punk))

	for a.State().HasMore {
		fetched, err := a.LoadMore(context.Background())
		require.NoError(t, err)
		require.True(t, fetched)
	}

	st := a.State()
	assert.Equal(t, []int{0, 2, 4}, offsets)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(st.Events))
	assert.Equal(t, domain.PageMeta{Total: 6, Page: 3, Limit: 2, Pages: 3}, st.Pagination)
}

func TestLoadMore_EmptyPageStops(t *testing.T) {
	l := pagedLister(2, 10, map[int][]int{0: {1, 2}})
	a := feed.NewAggregator(l, feed.Infinite, 2)
	require.NoError(t, a.SetFilter(context.Background(), punk))

	fetched, err := a.LoadMore(context.Background())

	require.NoError(t, err)
	assert.True(t, fetched)
	assert.False(t, a.State().HasMore, "an empty page ends the feed even if total says otherwise")
}

func TestLoadMore_ClassicModeIsNoOp(t *testing.T) {
	l := pagedLister(2, 10, map[int][]int{0: {1, 2}})
	a := feed.NewAggregator(l, feed.Classic, 2)
	require.NoError(t, a.SetFilter(context.Background(), punk))

	fetched, err := a.LoadMore(context.Background())

	assert.NoError(t, err)
	assert.False(t, fetched)
	assert.EqualValues(t, 1, l.calls.Load())
}

// ---- filter changes --------------------------------------------------------

func TestSetFilter_ResetsOnChange(t *testing.T) {
	var lastFilter domain.EventFilter
	l := &mockLister{list: func(_ context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		lastFilter = q.Filter
		base := 0
		if len(q.Filter.Search) > 0 && q.Filter.Search[0] == "ska" {
			base = 100
		}
		return domain.EventPage{
			Data: events(base+q.Offset+1, base+q.Offset+2),
			Meta: domain.EventMeta{Limit: 2, Total: 6, Offset: q.Offset},
		}, nil
	}}
	a := feed.NewAggregator(l, feed.Infinite, 2)

	require.NoError(t, a.SetFilter(context.Background(), punk))
	_, err := a.LoadMore(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4}, ids(a.State().Events))

	require.NoError(t, a.SetFilter(context.Background(), domain.EventFilter{Search: []string{"ska"}}))

	st := a.State()
	assert.Equal(t, []string{"ska"}, lastFilter.Search)
	assert.Equal(t, []int{101, 102}, ids(st.Events))
	assert.Equal(t, 1, st.Pagination.Page)
}

func TestSetFilter_SameFilterIsNoOp(t *testing.T) {
	l := pagedLister(2, 2, map[int][]int{0: {1, 2}})
	a := feed.NewAggregator(l, feed.Infinite, 2)

	require.NoError(t, a.SetFilter(context.Background(), domain.EventFilter{GenreIDs: []int{1}}))
	require.NoError(t, a.SetFilter(context.Background(), domain.EventFilter{GenreIDs: []int{1}}))

	assert.EqualValues(t, 1, l.calls.Load())
}

func TestSetFilter_FailureClearsList(t *testing.T) {
	boom := errors.New("boom")
	fail := false
	l := &mockLister{list: func(_ context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		if fail {
			return domain.EventPage{}, boom
		}
		return domain.EventPage{Data: events(1), Meta: domain.EventMeta{Limit: 2, Total: 1}}, nil
	}}
	a := feed.NewAggregator(l, feed.Classic, 2)
	require.NoError(t, a.SetFilter(context.Background(), punk))

	fail = true
	err := a.Refresh(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, a.State().Events)
	assert.ErrorIs(t, a.State().Err, boom)
}

func TestSetFilter_StaleResultIsDiscarded(t *testing.T) {
	slowStarted := make(chan struct{})
	l := &mockLister{list: func(ctx context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		if q.Filter.Search[0] == "slow" {
			close(slowStarted)
			<-ctx.Done()
			return domain.EventPage{Data: events(99), Meta: domain.EventMeta{Limit: 2, Total: 1}}, nil
		}
		return domain.EventPage{Data: events(1), Meta: domain.EventMeta{Limit: 2, Total: 1}}, nil
	}}
	a := feed.NewAggregator(l, feed.Classic, 2)

	errc := make(chan error, 1)
	go func() { errc <- a.SetFilter(context.Background(), domain.EventFilter{Search: []string{"slow"}}) }()
	<-slowStarted

	require.NoError(t, a.SetFilter(context.Background(), domain.EventFilter{Search: []string{"fast"}}))

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, feed.ErrStale)
	case <-time.After(time.Second):
		t.Fatal("slow request was not cancelled")
	}
	assert.Equal(t, []int{1}, ids(a.State().Events))
}

// ---- classic mode ----------------------------------------------------------

func TestGoToPage_ReplacesList(t *testing.T) {
	var offsets []int
	l := &mockLister{list: func(_ context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		offsets = append(offsets, q.Offset)
		return domain.EventPage{
			Data: events(q.Offset+1, q.Offset+2),
			Meta: domain.EventMeta{Limit: 2, Total: 6, Offset: q.Offset},
		}, nil
	}}
	a := feed.NewAggregator(l, feed.Classic, 2)
	require.NoError(t, a.SetFilter(context.Background(), punk))

	require.NoError(t, a.GoToPage(context.Background(), 3))

	st := a.State()
	assert.Equal(t, []int{0, 4}, offsets)
	assert.Equal(t, []int{5, 6}, ids(st.Events))
	assert.Equal(t, domain.PageMeta{Total: 6, Page: 3, Limit: 2, Pages: 3}, st.Pagination)
	assert.False(t, st.HasMore)
}

func TestGoToPage_UsesServedPageSize(t *testing.T) {
	var got []upstream.EventQuery
	l := &mockLister{list: func(_ context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		got = append(got, q)
		return domain.EventPage{
			Data: events(q.Offset+1, q.Offset+2),
			Meta: domain.EventMeta{Limit: 2, Total: 6, Offset: q.Offset},
		}, nil
	}}
	a := feed.NewAggregator(l, feed.Classic, 4)
	require.NoError(t, a.SetFilter(context.Background(), punk))

	require.NoError(t, a.GoToPage(context.Background(), 2))

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[1].Offset)
	assert.Equal(t, 2, got[1].Limit)
	assert.Equal(t, []int{3, 4}, ids(a.State().Events))
}

func TestGoToPage_FailureClearsPagination(t *testing.T) {
	boom := errors.New("boom")
	l := &mockLister{list: func(_ context.Context, q upstream.EventQuery) (domain.EventPage, error) {
		if q.Offset > 0 {
			return domain.EventPage{}, boom
		}
		return domain.EventPage{Data: events(1, 2), Meta: domain.EventMeta{Limit: 2, Total: 6}}, nil
	}}
	a := feed.NewAggregator(l, feed.Classic, 2)
	require.NoError(t, a.SetFilter(context.Background(), punk))
	require.True(t, a.State().HasMore)

	err := a.GoToPage(context.Background(), 2)

	assert.ErrorIs(t, err, boom)
	st := a.State()
	assert.Empty(t, st.Events)
	assert.Equal(t, domain.PageMeta{}, st.Pagination)
	assert.False(t, st.HasMore)
	assert.ErrorIs(t, st.Err, boom)
}

func TestGoToPage_Validation(t *testing.T) {
	a := feed.NewAggregator(pagedLister(2, 0, nil), feed.Classic, 2)

	assert.ErrorIs(t, a.GoToPage(context.Background(), 1), domain.ErrValidation, "no filter yet")
	require.NoError(t, a.SetFilter(context.Background(), punk))
	assert.ErrorIs(t, a.GoToPage(context.Background(), 0), domain.ErrValidation)
}

func TestState_EventsIsACopy(t *testing.T) {
	a := feed.NewAggregator(pagedLister(2, 2, map[int][]int{0: {1, 2}}), feed.Classic, 2)
	require.NoError(t, a.SetFilter(context.Background(), punk))

	st := a.State()
	st.Events[0].ID = 42

	assert.Equal(t, []int{1, 2}, ids(a.State().Events))
}

func TestClose_CancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	l := &mockLister{list: func(ctx context.Context, _ upstream.EventQuery) (domain.EventPage, error) {
		close(started)
		<-ctx.Done()
		return domain.EventPage{}, ctx.Err()
	}}
	a := feed.NewAggregator(l, feed.Infinite, 2)

	errc := make(chan error, 1)
	go func() { errc <- a.SetFilter(context.Background(), punk) }()
	<-started
	a.Close()

	assert.ErrorIs(t, <-errc, feed.ErrStale)
	assert.False(t, a.State().Loading)
}
