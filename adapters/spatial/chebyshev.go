package spatial

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"gocit/internal/errors"
)

// BruteForce answers maximum-norm neighbor queries by scanning all pairs.
// Cost is quadratic in the number of samples.
type BruteForce struct{}

// NewBruteForce creates the brute-force neighbor counter
func NewBruteForce() *BruteForce {
	return &BruteForce{}
}

// KthNearestDistance returns, per sample, the distance to its k-th nearest other sample
func (b *BruteForce) KthNearestDistance(ctx context.Context, points *mat.Dense, k int) ([]float64, error) {
	n, dim := points.Dims()
	if k < 1 || k >= n {
		return nil, errors.InvalidConfig("k = %d must be in [1, %d]", k, n-1)
	}
	all := make([]int, dim)
	for d := range all {
		all[d] = d
	}

	out := make([]float64, n)
	dists := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dists = dists[:0]
		pi := points.RawRowView(i)
		for j := 0; j < n; j++ {
			if j != i {
				dists = append(dists, chebyshev(pi, points.RawRowView(j), all))
			}
		}
		sort.Float64s(dists)
		out[i] = dists[k-1]
	}
	return out, nil
}

// CountWithinRadius counts, per sample, the samples (itself included) strictly
// closer than radii[i] over the given columns. An empty column set counts all samples.
func (b *BruteForce) CountWithinRadius(ctx context.Context, points *mat.Dense, dims []int, radii []float64) ([]int, error) {
	n, _ := points.Dims()
	if len(radii) != n {
		return nil, errors.InvalidConfig("got %d radii for %d samples", len(radii), n)
	}
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pi := points.RawRowView(i)
		for j := 0; j < n; j++ {
			if chebyshev(pi, points.RawRowView(j), dims) < radii[i] {
				counts[i]++
			}
		}
	}
	return counts, nil
}

func chebyshev(a, b []float64, dims []int) float64 {
	var d float64
	for _, k := range dims {
		d = math.Max(d, math.Abs(a[k]-b[k]))
	}
	return d
}
