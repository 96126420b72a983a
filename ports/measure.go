package ports

import (
	"context"

	"gocit/domain/dataset"
)

// DependenceMeasure computes the statistic I(X;Y|Z) from an aligned sample array.
// Implementations must be safe for concurrent Estimate calls on distinct arrays.
type DependenceMeasure interface {
	// Name identifies the measure in logs and metrics
	Name() string

	// TwoSided reports whether the statistic is symmetric around zero under the null
	TwoSided() bool

	// ResidualBased reports whether the statistic is a function of X and Y residuals on Z
	ResidualBased() bool

	// Estimate returns the statistic. The array is not modified.
	Estimate(ctx context.Context, arr *dataset.Array) (float64, error)
}

// Residualizer is implemented by residual-based measures
type Residualizer interface {
	// Residuals regresses row target (0 for X, 1 for Y) on the Z rows
	Residuals(ctx context.Context, arr *dataset.Array, target int) ([]float64, error)
}

// AnalyticSignificance is implemented by measures with a known null distribution
type AnalyticSignificance interface {
	AnalyticPValue(value float64, df int) (float64, error)
}

// AnalyticConfidence is implemented by measures with a closed-form interval
type AnalyticConfidence interface {
	AnalyticInterval(value float64, df int, confLev float64) (lower, upper float64, err error)
}

// ModelSelector scores how well the Z rows explain row 1 (Y).
// Lower scores are better.
type ModelSelector interface {
	ModelScore(ctx context.Context, arr *dataset.Array) (float64, error)
}

// Discrete is implemented by measures over symbolic data, where block
// lengths estimated from autocorrelation decay are questionable
type Discrete interface {
	Discrete() bool
}
