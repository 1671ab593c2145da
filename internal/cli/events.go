package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/feed"
	"github.com/pkordes/gigboard/internal/icalexport"
	"github.com/pkordes/gigboard/internal/search"
	"github.com/pkordes/gigboard/internal/service"
)

// maxFeedPages stops --all if the upstream never reports a last page.
const maxFeedPages = 500

func newEventsCmd() *cobra.Command {
	var (
		dates      presetFlags
		query      string
		countries  []int
		categories []int
		genres     []int
		sortBy     string
		sortOrder  string
		page       int
		limit      int
		all        bool
		ics        bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events matching a date preset and filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp(cmd)
			p, err := dates.preset()
			if err != nil {
				return err
			}
			svc, client, err := a.eventService()
			if err != nil {
				return err
			}

			req := service.EventListRequest{
				Preset: p,
				Filter: domain.EventFilter{
					Search:      search.SplitTerms(query, 1),
					CountryIDs:  countries,
					CategoryIDs: categories,
					GenreIDs:    genres,
					SortBy:      sortBy,
					SortOrder:   sortOrder,
				},
				Page: domain.NewPaginationParams(&page, &limit),
			}

			var events []domain.Event
			var meta domain.PageMeta
			if all {
				events, meta, err = loadAll(cmd.Context(), svc, client, req)
			} else {
				var list service.EventList
				list, err = svc.List(cmd.Context(), req)
				events, meta = list.Events, list.Pagination
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ics {
				_, err := io.WriteString(out, icalexport.Build(events, a.now()))
				return err
			}
			return printEvents(out, events, meta, all)
		},
	}

	cmd.Flags().StringVar(&dates.kind, "preset", "", "date preset: "+strings.Join(kindNames(), ", ")+" (default today)")
	dates.register(cmd)
	cmd.Flags().StringVar(&query, "search", "", `search terms, ";"-separated`)
	cmd.Flags().IntSliceVar(&countries, "country", nil, "country IDs")
	cmd.Flags().IntSliceVar(&categories, "category", nil, "category IDs")
	cmd.Flags().IntSliceVar(&genres, "genre", nil, "genre IDs")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "sort field")
	cmd.Flags().StringVar(&sortOrder, "sort-order", "", "asc or desc")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "events per page (max 100)")
	cmd.Flags().BoolVar(&all, "all", false, "keep loading pages until the last one")
	cmd.Flags().BoolVar(&ics, "ics", false, "write an iCalendar feed instead of a list")
	return cmd
}

// loadAll drives an infinite-mode aggregator until the upstream reports
// no further pages, returning the de-duplicated, decorated events.
func loadAll(ctx context.Context, svc *service.EventService, l feed.Lister, req service.EventListRequest) ([]domain.Event, domain.PageMeta, error) {
	f, err := svc.ResolveFilter(req)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}

	agg := feed.NewAggregator(l, feed.Infinite, req.Page.Limit)
	defer agg.Close()

	if err := agg.SetFilter(ctx, f); err != nil {
		return nil, domain.PageMeta{}, err
	}
	for range maxFeedPages {
		fetched, err := agg.LoadMore(ctx)
		if err != nil {
			return nil, domain.PageMeta{}, err
		}
		if !fetched {
			break
		}
	}

	st := agg.State()
	return svc.Decorate(ctx, st.Events), st.Pagination, nil
}

func printEvents(w io.Writer, events []domain.Event, meta domain.PageMeta, all bool) error {
	for _, ev := range events {
		if _, err := fmt.Fprintf(w, "%-26s %s%s\n", ev.DisplayDate, ev.Name, where(ev)); err != nil {
			return err
		}
	}
	if all {
		_, err := fmt.Fprintf(w, "-- %d events\n", len(events))
		return err
	}
	_, err := fmt.Fprintf(w, "-- page %d/%d, %d events\n", meta.Page, meta.Pages, meta.Total)
	return err
}

func where(ev domain.Event) string {
	parts := make([]string, 0, 2)
	for _, s := range []string{ev.Venue, ev.City} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
