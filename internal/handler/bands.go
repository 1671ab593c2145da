package handler

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/gigboard/internal/domain"
)

// defaultSearchLimit is the per-term result cap for GET /bands/search.
const defaultSearchLimit = 25

// BandListResponse is the body of GET /bands.
type BandListResponse struct {
	Data       []domain.Band   `json:"data"`
	Pagination domain.PageMeta `json:"pagination"`
}

// BandSearchResponse is the body of GET /bands/search.
type BandSearchResponse struct {
	Data []domain.Band `json:"data"`
}

// ListBands handles GET /bands.
// ?search= may hold several ";"-separated terms, which are merged and
// paginated server-side.
func (s *Server) ListBands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := pageParams(q)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	list, err := s.bands.List(r.Context(), q.Get("search"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bands := list.Bands
	if bands == nil {
		bands = []domain.Band{}
	}
	writeJSON(w, http.StatusOK, BandListResponse{Data: bands, Pagination: list.Pagination})
}

// SearchBands handles GET /bands/search?q=.
func (s *Server) SearchBands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var term string
	if err := runtime.BindQueryParameter("form", true, true, "q", q, &term); err != nil {
		requestError(w, fmt.Sprintf("invalid q: %v", err))
		return
	}
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		requestError(w, fmt.Sprintf("invalid limit: %v", err))
		return
	}
	n := defaultSearchLimit
	if limit != nil && *limit >= 1 {
		n = min(*limit, 100)
	}

	bands, err := s.bands.Search(r.Context(), term, n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if bands == nil {
		bands = []domain.Band{}
	}
	writeJSON(w, http.StatusOK, BandSearchResponse{Data: bands})
}
