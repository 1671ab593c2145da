package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pkordes/gigboard/internal/calendar"
)

// DateSource returns the raw event dates used for calendar highlighting.
type DateSource interface {
	EventDates(ctx context.Context) ([]string, error)
}

// DateCache holds the set of dates that have events. It is refreshed on a
// schedule and read by every calendar render, so reads never wait on
// upstream once the cache is warm.
type DateCache struct {
	src   DateSource
	log   *slog.Logger
	group singleflight.Group

	mu        sync.RWMutex
	dates     []calendar.Date
	refreshed time.Time
}

// NewDateCache constructs an empty DateCache.
func NewDateCache(src DateSource, log *slog.Logger) *DateCache {
	if log == nil {
		log = slog.Default()
	}
	return &DateCache{src: src, log: log}
}

// Refresh reloads the dates from upstream. Unparseable entries are
// dropped; the rest are sorted and deduplicated. On failure the previous
// contents are kept. Concurrent calls share a single upstream request.
func (c *DateCache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *DateCache) refresh(ctx context.Context) error {
	raw, err := c.src.EventDates(ctx)
	if err != nil {
		return fmt.Errorf("service.DateCache.Refresh: %w", err)
	}

	dates := make([]calendar.Date, 0, len(raw))
	for _, s := range raw {
		d, ok := calendar.Parse(s)
		if !ok {
			c.log.DebugContext(ctx, "dropping unreadable event date", "date", s)
			continue
		}
		dates = append(dates, d)
	}
	slices.SortFunc(dates, calendar.Date.Compare)
	dates = slices.Compact(dates)

	c.mu.Lock()
	c.dates = dates
	c.refreshed = time.Now()
	c.mu.Unlock()
	return nil
}

// Dates returns the cached dates, loading them first if the cache has
// never been filled.
func (c *DateCache) Dates(ctx context.Context) ([]calendar.Date, error) {
	if !c.warm() {
		_, err, _ := c.group.Do("refresh", func() (any, error) {
			if c.warm() {
				return nil, nil
			}
			return nil, c.refresh(ctx)
		})
		if err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.dates), nil
}

func (c *DateCache) warm() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.refreshed.IsZero()
}

// RefreshedAt returns when the cache was last filled, or the zero time.
func (c *DateCache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshed
}
