package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/gigboard/internal/domain"
	"github.com/pkordes/gigboard/internal/search"
	"github.com/pkordes/gigboard/internal/service"
)

func newBandsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bands",
		Short: "Search and list bands",
	}
	cmd.AddCommand(newBandsSearchCmd(), newBandsListCmd(), newBandsWatchCmd())
	return cmd
}

func newBandsSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: `Search bands; separate several terms with ";"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getApp(cmd).bandService()
			if err != nil {
				return err
			}
			bands, err := svc.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return printBands(cmd.OutOrStdout(), bands)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum results per term")
	return cmd
}

func newBandsListCmd() *cobra.Command {
	var (
		query string
		page  int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bands page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getApp(cmd).bandService()
			if err != nil {
				return err
			}
			list, err := svc.List(cmd.Context(), query, domain.NewPaginationParams(&page, &limit))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printBands(out, list.Bands); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "-- page %d/%d, %d bands\n", list.Pagination.Page, list.Pagination.Pages, list.Pagination.Total)
			return err
		},
	}
	cmd.Flags().StringVar(&query, "search", "", `search terms, ";"-separated`)
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "bands per page (max 100)")
	return cmd
}

func newBandsWatchCmd() *cobra.Command {
	var (
		limit int
		quiet time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Search interactively as terms are typed on stdin",
		Long: `Reads one edit per line from stdin and searches once input has been
quiet for the debounce period:

  text    replace all terms with the ";"-separated text
  +term   add a term
  -term   remove a term
  !       clear all terms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getApp(cmd).bandService()
			if err != nil {
				return err
			}
			w := &watcher{
				svc:   svc,
				out:   cmd.OutOrStdout(),
				limit: limit,
				terms: search.NewTermSet(),
				deb:   search.NewDebouncer(quiet),
			}
			return w.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum results per term")
	cmd.Flags().DurationVar(&quiet, "debounce", search.DefaultQuietPeriod, "quiet period before searching")
	return cmd
}

// watcher turns a stream of term edits into debounced searches. Searches
// run on the reading goroutine so output is never interleaved.
type watcher struct {
	svc   *service.BandService
	out   io.Writer
	limit int
	terms *search.TermSet
	deb   *search.Debouncer
	last  string
}

func (w *watcher) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	fire := make(chan string, 8)
	defer w.deb.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q := <-fire:
			w.search(ctx, q)
		case line, ok := <-lines:
			if !ok {
				w.flush(ctx, fire)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if !w.apply(line) {
				continue
			}
			q := w.terms.Query()
			w.deb.Trigger(func() {
				select {
				case fire <- q:
				default:
				}
			})
		}
	}
}

// flush stops the debouncer at end of input and runs the final query
// right away unless it was already searched.
func (w *watcher) flush(ctx context.Context, fire chan string) {
	w.deb.Stop()
	select {
	case <-fire:
	default:
	}
	if q := w.terms.Query(); q != w.last {
		w.search(ctx, q)
	}
}

// apply edits the term set and reports whether it changed.
func (w *watcher) apply(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case line == "!":
		if w.terms.Len() == 0 {
			return false
		}
		w.terms.Clear()
		return true
	case strings.HasPrefix(line, "+"):
		return w.terms.Add(line[1:])
	case strings.HasPrefix(line, "-"):
		return w.terms.Remove(line[1:])
	default:
		w.terms.Clear()
		for _, t := range strings.Split(line, search.Separator) {
			w.terms.Add(t)
		}
		return true
	}
}

func (w *watcher) search(ctx context.Context, q string) {
	w.last = q
	if strings.TrimSpace(q) == "" {
		fmt.Fprintln(w.out, "» (no terms)")
		return
	}
	bands, err := w.svc.Search(ctx, q, w.limit)
	if err != nil {
		fmt.Fprintf(w.out, "» %s: %v\n", q, err)
		return
	}
	fmt.Fprintf(w.out, "» %s (%d bands)\n", q, len(bands))
	//nolint:errcheck
	printBands(w.out, bands)
}

func printBands(w io.Writer, bands []domain.Band) error {
	for _, b := range bands {
		line := b.Name
		if b.Country != "" {
			line += " [" + b.Country + "]"
		}
		if len(b.Genres) > 0 {
			line += " " + strings.Join(b.Genres, ", ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
