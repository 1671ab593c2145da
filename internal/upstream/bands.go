package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkordes/gigboard/internal/domain"
)

// ListBands fetches one page of the band list, optionally filtered by a
// single search term.
func (c *Client) ListBands(ctx context.Context, page, limit int, search string) (domain.BandPage, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	if search != "" {
		v.Set("search", search)
	}

	var out domain.BandPage
	if err := c.getJSON(ctx, "/bands", v, &out); err != nil {
		return domain.BandPage{}, fmt.Errorf("upstream.Client.ListBands: %w", err)
	}
	if out.Bands == nil {
		out.Bands = []domain.Band{}
	}
	return out, nil
}

// SearchBands runs the quick search used by the band pickers.
func (c *Client) SearchBands(ctx context.Context, q string, limit int) ([]domain.Band, error) {
	v := url.Values{}
	v.Set("q", q)
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}

	var out struct {
		Results []domain.Band `json:"results"`
	}
	if err := c.getJSON(ctx, "/bands/search", v, &out); err != nil {
		return nil, fmt.Errorf("upstream.Client.SearchBands: %w", err)
	}
	if out.Results == nil {
		out.Results = []domain.Band{}
	}
	return out.Results, nil
}
