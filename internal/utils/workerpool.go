package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelMap applies fn to every item with at most workers calls in flight.
// Results keep the input order. The first error cancels the shared context,
// the remaining calls are abandoned and no results are returned.
func ParallelMap[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}
	if workers <= 0 {
		workers = 1
	}

	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParallelForEach executes fn for each item with bounded concurrency and
// returns the first error.
func ParallelForEach[T any](ctx context.Context, items []T, workers int, fn func(context.Context, T) error) error {
	_, err := ParallelMap(ctx, items, workers, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}
