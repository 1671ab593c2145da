package domain

// PaginationParams carries page/limit values from the HTTP layer to the
// services and the upstream client.
// Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (page=1, limit=20).
// The limit is capped at 100 to prevent runaway queries.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}

// Offset returns the zero-based item offset sent to the upstream API.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta is the pagination state shown to clients.
type PageMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NewPageMeta converts the upstream's {limit, total, offset} triple into
// page numbers: page = floor(offset/limit)+1, pages = ceil(total/limit).
// A non-positive limit is treated as a single page holding everything.
func NewPageMeta(limit, total, offset int) PageMeta {
	if limit <= 0 {
		m := PageMeta{Total: total, Page: 1, Limit: limit}
		if total > 0 {
			m.Pages = 1
		}
		return m
	}
	if offset < 0 {
		offset = 0
	}
	return PageMeta{
		Total: total,
		Page:  offset/limit + 1,
		Limit: limit,
		Pages: (total + limit - 1) / limit,
	}
}

// HasMore reports whether pages remain after the current one.
func (m PageMeta) HasMore() bool {
	return m.Page < m.Pages
}

// Window returns the slice of items on page p together with its metadata.
// It is used where upstream pagination cannot apply, such as merged
// multi-term search results.
func Window[T any](items []T, p PaginationParams) ([]T, PageMeta) {
	meta := NewPageMeta(p.Limit, len(items), p.Offset())
	start := p.Offset()
	if start >= len(items) {
		return []T{}, meta
	}
	end := min(start+p.Limit, len(items))
	return items[start:end], meta
}
