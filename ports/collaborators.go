package ports

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// RegressionFit is the outcome of fitting a nonparametric regression
type RegressionFit struct {
	Predictions   []float64
	LogLikelihood float64 // log marginal likelihood of the fitted model
}

// Regressor fits target on features and predicts at the training points.
// features has one row per sample.
type Regressor interface {
	Fit(ctx context.Context, features *mat.Dense, target []float64) (*RegressionFit, error)
}

// MaxCorrSolver estimates the maximal correlation between two series
type MaxCorrSolver interface {
	Solve(ctx context.Context, x, y []float64) (float64, error)
}

// NeighborCounter answers nearest-neighbor queries under the maximum norm.
// points has one row per sample and one column per dimension.
type NeighborCounter interface {
	// KthNearestDistance returns, per sample, the distance to its k-th nearest other sample
	KthNearestDistance(ctx context.Context, points *mat.Dense, k int) ([]float64, error)

	// CountWithinRadius returns, per sample, the number of samples (itself included)
	// strictly closer than radii[i] in the subspace spanned by the given columns
	CountWithinRadius(ctx context.Context, points *mat.Dense, dims []int, radii []float64) ([]int, error)
}

// NullDistTable holds precomputed null distributions indexed by sample size
type NullDistTable interface {
	SampleSizes() []int
	Distribution(i int) []float64
}
