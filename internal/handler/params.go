package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/gigboard/internal/calendar"
	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/preset"
	"github.com/pkordes/gigboard/internal/search"
	"github.com/pkordes/gigboard/internal/service"
)

// filterInput is the raw event filter as supplied by a client, either as
// query parameters (GET /events, GET /events.ics) or as the JSON body of
// POST /feeds.
type filterInput struct {
	Preset      string `json:"preset,omitempty"`
	Date        string `json:"date,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Search      string `json:"search,omitempty"`
	CountryIDs  []int  `json:"country_id,omitempty"`
	CategoryIDs []int  `json:"category_id,omitempty"`
	GenreIDs    []int  `json:"genre_id,omitempty"`
	SortBy      string `json:"sort_by,omitempty"`
	SortOrder   string `json:"sort_order,omitempty"`
}

// filterFromQuery binds the event filter query parameters.
// ID lists are comma-separated: ?genre_id=1,4.
func filterFromQuery(q url.Values) (filterInput, error) {
	in := filterInput{
		Preset:    q.Get("preset"),
		Date:      q.Get("date"),
		From:      q.Get("from"),
		To:        q.Get("to"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	for name, dest := range map[string]*[]int{
		"country_id":  &in.CountryIDs,
		"category_id": &in.CategoryIDs,
		"genre_id":    &in.GenreIDs,
	} {
		var ids *[]int
		if err := runtime.BindQueryParameter("form", false, false, name, q, &ids); err != nil {
			return filterInput{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		if ids != nil {
			*dest = *ids
		}
	}
	return in, nil
}

// eventRequest converts the raw input into a service request. When no
// preset is named, a date selects the Specific preset and a from/to bound
// selects a Custom range.
func (in filterInput) eventRequest() (service.EventListRequest, error) {
	kind, err := preset.ParseKind(in.Preset)
	if err != nil {
		return service.EventListRequest{}, err
	}
	date, err := optionalDate("date", in.Date)
	if err != nil {
		return service.EventListRequest{}, err
	}
	from, err := optionalDate("from", in.From)
	if err != nil {
		return service.EventListRequest{}, err
	}
	to, err := optionalDate("to", in.To)
	if err != nil {
		return service.EventListRequest{}, err
	}

	if in.Preset == "" {
		switch {
		case date != nil:
			kind = preset.Specific
		case from != nil || to != nil:
			kind = preset.Custom
		}
	}

	p := preset.Preset{Kind: kind}
	switch kind {
	case preset.Specific:
		if date == nil {
			date = from
		}
		if date == nil {
			return service.EventListRequest{}, fmt.Errorf("preset %q requires a date", kind)
		}
		p.Range = calendar.Range{From: date}
	case preset.Custom:
		p.Range = calendar.Range{From: from, To: to}
	}

	switch strings.ToLower(in.SortOrder) {
	case "", "asc", "desc":
	default:
		return service.EventListRequest{}, fmt.Errorf("invalid sort_order %q: must be asc or desc", in.SortOrder)
	}

	return service.EventListRequest{
		Preset: p,
		Filter: domain.EventFilter{
			Search:      search.SplitTerms(in.Search, 1),
			CountryIDs:  in.CountryIDs,
			CategoryIDs: in.CategoryIDs,
			GenreIDs:    in.GenreIDs,
			SortBy:      in.SortBy,
			SortOrder:   strings.ToLower(in.SortOrder),
		},
	}, nil
}

func optionalDate(name, s string) (*calendar.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, ok := calendar.Parse(s)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q: want YYYY-MM-DD", name, s)
	}
	return &d, nil
}

// pageParams binds ?page= and ?limit=, applying the defaults and cap of
// domain.NewPaginationParams.
func pageParams(q url.Values) (domain.PaginationParams, error) {
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("invalid page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("invalid limit: %w", err)
	}
	return domain.NewPaginationParams(page, limit), nil
}

// intPathParam binds a required integer path parameter.
func intPathParam(r *http.Request, name string) (int, error) {
	var v int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

// uuidPathParam parses a required UUID path parameter.
func uuidPathParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}
