package resampling

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gocit/domain/dataset"
)

// MeasureFunc evaluates a statistic on a resampled array
type MeasureFunc func(ctx context.Context, arr *dataset.Array) (float64, error)

// evaluate runs fn on every array produced by build and stores each value in
// its own slot, so the result order depends only on the sample index
func evaluate(ctx context.Context, workers, n int, build func(i int) *dataset.Array, fn MeasureFunc) ([]float64, error) {
	dist := make([]float64, n)
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v, err := fn(ctx, build(i))
			if err != nil {
				return nil, err
			}
			dist[i] = v
		}
		return dist, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, build(i))
			if err != nil {
				return err
			}
			dist[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dist, nil
}
