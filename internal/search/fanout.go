package search

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxConcurrent bounds the number of term requests in flight at once.
const maxConcurrent = 4

// FetchFunc runs one upstream search for a single term.
type FetchFunc[T any] func(ctx context.Context, term string) ([]T, error)

// FanOut issues one fetch per term and returns the union of the results,
// deduplicated by id. When an ID appears for several terms, the record
// from the earliest term wins. Ordering beyond that is left to the caller.
//
// The first failing term cancels the rest and its error is returned.
func FanOut[T any](ctx context.Context, terms []string, fetch FetchFunc[T], id func(T) int) ([]T, error) {
	results := make([][]T, len(terms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, term := range terms {
		g.Go(func() error {
			items, err := fetch(gctx, term)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return MergeByID(id, results...), nil
}

// MergeByID concatenates sets, keeping only the first record for each ID.
func MergeByID[T any](id func(T) int, sets ...[]T) []T {
	out := []T{}
	seen := make(map[int]struct{})
	for _, set := range sets {
		for _, item := range set {
			k := id(item)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
