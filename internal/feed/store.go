package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/gigboard/internal/domain"
)

// Store keeps server-side infinite-scroll sessions so thin clients can
// page through a feed by ID. Sessions idle for longer than the TTL are
// removed by Sweep.
type Store struct {
	lister Lister
	limit  int
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

type session struct {
	agg      *Aggregator
	lastUsed time.Time
}

// NewStore constructs a Store whose sessions fetch limit events per page.
func NewStore(l Lister, limit int, ttl time.Duration) *Store {
	return &Store{
		lister:   l,
		limit:    limit,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

// WithClock replaces the store's time source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Create opens a session for f and loads its first page. On failure no
// session is kept.
func (s *Store) Create(ctx context.Context, f domain.EventFilter) (uuid.UUID, State, error) {
	agg := NewAggregator(s.lister, Infinite, s.limit)
	if err := agg.SetFilter(ctx, f); err != nil {
		agg.Close()
		return uuid.Nil, State{}, fmt.Errorf("feed.Store.Create: %w", err)
	}

	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = &session{agg: agg, lastUsed: s.now()}
	s.mu.Unlock()

	return id, agg.State(), nil
}

// Get returns the current state of session id.
func (s *Store) Get(id uuid.UUID) (State, error) {
	agg, err := s.touch(id)
	if err != nil {
		return State{}, fmt.Errorf("feed.Store.Get: %w", err)
	}
	return agg.State(), nil
}

// LoadMore appends the next page to session id. The returned state always
// reflects everything accumulated so far, including after a failed fetch.
func (s *Store) LoadMore(ctx context.Context, id uuid.UUID) (State, error) {
	agg, err := s.touch(id)
	if err != nil {
		return State{}, fmt.Errorf("feed.Store.LoadMore: %w", err)
	}
	if _, err := agg.LoadMore(ctx); err != nil {
		return agg.State(), fmt.Errorf("feed.Store.LoadMore: %w", err)
	}
	return agg.State(), nil
}

// Delete closes and removes session id.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("feed.Store.Delete: %w", domain.ErrNotFound)
	}
	sess.agg.Close()
	return nil
}

// Sweep removes sessions idle since before now-TTL and returns how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.agg.Close()
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) touch(id uuid.UUID) (*Aggregator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sess.lastUsed = s.now()
	return sess.agg, nil
}
