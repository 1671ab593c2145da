// Package feed accumulates paginated event lists for the event browser.
//
// An Aggregator runs in one of two modes. In Classic mode each page change
// fetches that page and replaces the list. In Infinite mode LoadMore
// fetches the next page and appends it, dropping events whose ID has
// already been seen. In both modes a change to the filter resets the list
// and starts again at page 1.
//
// At most one fetch is in flight per Aggregator. Every fetch is tagged with
// a generation; results belonging to a superseded generation are dropped
// so a slow response can never overwrite a newer one.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/upstream"
)

// Mode selects how pages are combined.
type Mode int

const (
	// Classic replaces the list on every page change.
	Classic Mode = iota
	// Infinite appends each newly loaded page.
	Infinite
)

// DefaultPageSize is used when NewAggregator is given a non-positive limit.
const DefaultPageSize = 20

// ErrStale is returned to the caller of a fetch whose result was discarded
// because a newer filter or page request superseded it.
var ErrStale = errors.New("superseded by a newer request")

// Lister is the upstream call the aggregator drives.
type Lister interface {
	ListEvents(ctx context.Context, q upstream.EventQuery) (domain.EventPage, error)
}

// State is a snapshot of an Aggregator.
type State struct {
	Filter     domain.EventFilter
	Events     []domain.Event
	Pagination domain.PageMeta
	HasMore    bool
	Loading    bool
	// Err is the error from the most recent fetch, nil after a success.
	Err error
}

// Aggregator accumulates event pages for one filter at a time.
// It is safe for concurrent use.
type Aggregator struct {
	lister Lister
	mode   Mode
	limit  int

	mu        sync.Mutex
	started   bool
	filter    domain.EventFilter
	filterKey string
	events    []domain.Event
	seen      map[int]struct{}
	meta      domain.PageMeta
	next      int // offset of the first row not yet received
	pageSize  int // limit the upstream actually serves, 0 until known
	hasMore   bool
	loading   bool
	err       error
	gen       uint64
	cancel    context.CancelFunc
}

// NewAggregator returns an Aggregator that fetches limit events per page.
func NewAggregator(l Lister, mode Mode, limit int) *Aggregator {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &Aggregator{
		lister: l,
		mode:   mode,
		limit:  limit,
		seen:   make(map[int]struct{}),
	}
}

// Mode returns the aggregator's mode.
func (a *Aggregator) Mode() Mode { return a.mode }

// SetFilter makes f the active filter. If f is structurally equal to the
// active filter nothing happens. Otherwise the accumulated list is
// cleared, any in-flight fetch is cancelled, and page 1 is fetched.
func (a *Aggregator) SetFilter(ctx context.Context, f domain.EventFilter) error {
	key := f.Key()

	a.mu.Lock()
	if a.started && key == a.filterKey {
		a.mu.Unlock()
		return nil
	}
	a.started = true
	a.filter = f
	a.filterKey = key
	a.reset()
	gen, fctx := a.begin(ctx)
	a.mu.Unlock()

	page, err := a.lister.ListEvents(fctx, upstream.EventQuery{Filter: f, Limit: a.limit})
	return a.finish(gen, 0, page, err, false)
}

// Refresh refetches page 1 of the active filter, discarding what has
// been accumulated.
func (a *Aggregator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return fmt.Errorf("feed.Aggregator.Refresh: %w: no filter set", domain.ErrValidation)
	}
	f := a.filter
	a.reset()
	gen, fctx := a.begin(ctx)
	a.mu.Unlock()

	page, err := a.lister.ListEvents(fctx, upstream.EventQuery{Filter: f, Limit: a.limit})
	return a.finish(gen, 0, page, err, false)
}

// LoadMore fetches the next page and appends it. It reports whether a
// fetch was issued: it does nothing when the aggregator is not in Infinite
// mode, when a fetch is already in flight, or when the last page has been
// reached.
//
// A failed LoadMore keeps everything loaded so far; the error is returned
// and recorded in State.Err, and HasMore is left unchanged so the caller
// can retry.
func (a *Aggregator) LoadMore(ctx context.Context) (bool, error) {
	a.mu.Lock()
	if a.mode != Infinite || !a.started || a.loading || !a.hasMore {
		a.mu.Unlock()
		return false, nil
	}
	f := a.filter
	offset := a.next
	gen := a.gen
	fctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.loading = true
	a.mu.Unlock()

	page, err := a.lister.ListEvents(fctx, upstream.EventQuery{Filter: f, Limit: a.limit, Offset: offset})
	return true, a.finish(gen, offset, page, err, true)
}

// GoToPage fetches page n of the active filter and replaces the list.
// Pages are counted in the page size the upstream serves, which may be
// smaller than the requested limit. A page change supersedes any fetch
// already in flight.
func (a *Aggregator) GoToPage(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("feed.Aggregator.GoToPage: %w: page must be >= 1", domain.ErrValidation)
	}

	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return fmt.Errorf("feed.Aggregator.GoToPage: %w: no filter set", domain.ErrValidation)
	}
	f := a.filter
	size := a.limit
	if a.pageSize > 0 {
		size = a.pageSize
	}
	gen, fctx := a.begin(ctx)
	a.mu.Unlock()

	offset := (n - 1) * size
	page, err := a.lister.ListEvents(fctx, upstream.EventQuery{Filter: f, Limit: size, Offset: offset})
	return a.finish(gen, offset, page, err, false)
}

// State returns a snapshot. The Events slice is a copy.
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	events := make([]domain.Event, len(a.events))
	copy(events, a.events)
	return State{
		Filter:     a.filter,
		Events:     events,
		Pagination: a.meta,
		HasMore:    a.hasMore,
		Loading:    a.loading,
		Err:        a.err,
	}
}

// Close cancels any in-flight fetch and discards its result.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.gen++
	a.loading = false
}

// reset clears accumulated results. Caller holds a.mu.
func (a *Aggregator) reset() {
	a.events = nil
	a.seen = make(map[int]struct{})
	a.meta = domain.PageMeta{}
	a.next = 0
	a.hasMore = false
	a.err = nil
}

// begin supersedes the in-flight fetch, if any, and starts a new
// generation. Caller holds a.mu.
func (a *Aggregator) begin(ctx context.Context) (uint64, context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	a.gen++
	fctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.loading = true
	return a.gen, fctx
}

// finish applies the result of a fetch issued at offset if gen is still
// current. The next offset advances by the rows actually received, so an
// upstream that caps the page size never causes rows to be skipped.
func (a *Aggregator) finish(gen uint64, offset int, page domain.EventPage, err error, appending bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen {
		return ErrStale
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.loading = false

	if err != nil {
		a.err = err
		if !appending {
			a.events = nil
			a.seen = make(map[int]struct{})
			a.meta = domain.PageMeta{}
			a.next = 0
			a.hasMore = false
		}
		return err
	}

	limit := page.Meta.Limit
	if limit <= 0 || limit > a.limit {
		limit = a.limit
	}
	a.pageSize = limit
	a.meta = domain.NewPageMeta(limit, page.Meta.Total, offset)
	a.next = offset + len(page.Data)
	a.hasMore = len(page.Data) > 0 && a.next < page.Meta.Total
	a.err = nil

	if !appending {
		a.events = nil
		a.seen = make(map[int]struct{})
	}
	for _, ev := range page.Data {
		if _, dup := a.seen[ev.ID]; dup {
			continue
		}
		a.seen[ev.ID] = struct{}{}
		a.events = append(a.events, ev)
	}
	return nil
}
