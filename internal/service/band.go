package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/search"
)

// mergeFetchLimit is the page size used per term when multi-term results
// are merged client-side. Upstream pagination is meaningless across
// independently searched terms, so everything is fetched at once.
const mergeFetchLimit = 1000

// BandSource is the upstream surface BandService depends on.
type BandSource interface {
	ListBands(ctx context.Context, page, limit int, search string) (domain.BandPage, error)
	SearchBands(ctx context.Context, q string, limit int) ([]domain.Band, error)
}

// BandList is one page of bands.
type BandList struct {
	Bands      []domain.Band
	Pagination domain.PageMeta
}

// BandService implements band search and listing, including multi-term
// ("Mad Sin; Berlin") queries.
type BandService struct {
	bands BandSource
}

// NewBandService constructs a BandService backed by the provided source.
func NewBandService(bands BandSource) *BandService {
	return &BandService{bands: bands}
}

// Search runs one upstream search per term in raw and returns the merged
// results sorted by name.
// Returns domain.ErrValidation if no term is at least search.MinTermLength long.
func (s *BandService) Search(ctx context.Context, raw string, limit int) ([]domain.Band, error) {
	terms := search.SplitTerms(raw, search.MinTermLength)
	if len(terms) == 0 {
		return nil, fmt.Errorf("service.BandService.Search: %w: search term must be at least %d characters",
			domain.ErrValidation, search.MinTermLength)
	}

	bands, err := search.FanOut(ctx, terms, func(ctx context.Context, term string) ([]domain.Band, error) {
		return s.bands.SearchBands(ctx, term, limit)
	}, bandID)
	if err != nil {
		return nil, fmt.Errorf("service.BandService.Search: %w", err)
	}

	sortByName(bands)
	return bands, nil
}

// List returns one page of bands. An empty query lists everything and a
// single term is paginated upstream. A multi-term query fetches every
// match for every term, merges and sorts them, and paginates locally.
func (s *BandService) List(ctx context.Context, raw string, p domain.PaginationParams) (BandList, error) {
	if strings.TrimSpace(raw) == "" {
		return s.listPage(ctx, "", p)
	}

	terms := search.SplitTerms(raw, search.MinTermLength)
	switch len(terms) {
	case 0:
		return BandList{}, fmt.Errorf("service.BandService.List: %w: search term must be at least %d characters",
			domain.ErrValidation, search.MinTermLength)
	case 1:
		return s.listPage(ctx, terms[0], p)
	}

	bands, err := search.FanOut(ctx, terms, func(ctx context.Context, term string) ([]domain.Band, error) {
		page, err := s.bands.ListBands(ctx, 1, mergeFetchLimit, term)
		if err != nil {
			return nil, err
		}
		return page.Bands, nil
	}, bandID)
	if err != nil {
		return BandList{}, fmt.Errorf("service.BandService.List: %w", err)
	}

	sortByName(bands)
	window, meta := domain.Window(bands, p)
	return BandList{Bands: window, Pagination: meta}, nil
}

func (s *BandService) listPage(ctx context.Context, term string, p domain.PaginationParams) (BandList, error) {
	page, err := s.bands.ListBands(ctx, p.Page, p.Limit, term)
	if err != nil {
		return BandList{}, fmt.Errorf("service.BandService.List: %w", err)
	}
	return BandList{
		Bands: page.Bands,
		Pagination: domain.PageMeta{
			Total: page.Total,
			Page:  p.Page,
			Limit: p.Limit,
			Pages: page.Pages,
		},
	}, nil
}

func bandID(b domain.Band) int { return b.ID }

// sortByName orders bands case-insensitively by name, then by ID so equal
// names have a stable order.
func sortByName(bands []domain.Band) {
	slices.SortStableFunc(bands, func(a, b domain.Band) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
