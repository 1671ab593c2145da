package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkordes/gigboard/internal/domain"
)

// EventQuery is a filter plus the window to fetch.
type EventQuery struct {
	Filter domain.EventFilter
	Limit  int
	Offset int
}

// Values encodes q the way GET /events expects: multi-values comma-joined,
// dates as YYYY-MM-DD, empty filters omitted.
func (q EventQuery) Values() url.Values {
	v := url.Values{}
	f := q.Filter
	if len(f.Search) > 0 {
		v.Set("search", strings.Join(f.Search, ","))
	}
	setInts(v, "country_id", f.CountryIDs)
	setInts(v, "category_id", f.CategoryIDs)
	setInts(v, "genre_id", f.GenreIDs)
	if f.From != nil {
		v.Set("from_date", f.From.String())
	}
	if f.To != nil {
		v.Set("to_date", f.To.String())
	}
	if f.SortBy != "" {
		v.Set("sort_by", f.SortBy)
	}
	if f.SortOrder != "" {
		v.Set("sort_order", f.SortOrder)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	v.Set("offset", strconv.Itoa(q.Offset))
	return v
}

// ListEvents fetches one page of events.
func (c *Client) ListEvents(ctx context.Context, q EventQuery) (domain.EventPage, error) {
	var page domain.EventPage
	if err := c.getJSON(ctx, "/events", q.Values(), &page); err != nil {
		return domain.EventPage{}, fmt.Errorf("upstream.Client.ListEvents: %w", err)
	}
	if page.Data == nil {
		page.Data = []domain.Event{}
	}
	return page, nil
}

// GetEvent fetches a single event by ID.
func (c *Client) GetEvent(ctx context.Context, id int) (domain.Event, error) {
	var body struct {
		Data domain.Event `json:"data"`
	}
	if err := c.getJSON(ctx, "/events/"+strconv.Itoa(id), nil, &body); err != nil {
		return domain.Event{}, fmt.Errorf("upstream.Client.GetEvent: %w", err)
	}
	return body.Data, nil
}

// EventDates returns every date that has at least one event, as the raw
// YYYY-MM-DD strings upstream sends.
func (c *Client) EventDates(ctx context.Context) ([]string, error) {
	var body struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
	}
	if err := c.getJSON(ctx, "/events", url.Values{"dates": {"true"}}, &body); err != nil {
		return nil, fmt.Errorf("upstream.Client.EventDates: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("upstream.Client.EventDates: %w: success=false", domain.ErrUpstream)
	}
	return body.Data, nil
}

func setInts(v url.Values, key string, ids []int) {
	if len(ids) == 0 {
		return
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	v.Set(key, strings.Join(parts, ","))
}
