package measures

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal"
	"gocit/internal/errors"
	"gocit/ports"
)

// nullSizeTolerance is the largest relative gap between df and the nearest
// tabulated sample size
const nullSizeTolerance = 0.01

// GPACE regresses Z out of X and Y with a nonparametric regressor and
// measures the maximal correlation of the uniform-marginal residuals
type GPACE struct {
	regressor ports.Regressor
	solver    ports.MaxCorrSolver
	table     ports.NullDistTable // optional, needed for analytic significance
	logger    *internal.Logger
}

// NewGPACE wires the collaborators. The solver is run with the logger
// lowered to ERROR, so it should log through the same logger.
func NewGPACE(regressor ports.Regressor, solver ports.MaxCorrSolver, table ports.NullDistTable, logger *internal.Logger) (*GPACE, error) {
	if regressor == nil || solver == nil {
		return nil, errors.InvalidConfig("GPACE needs a regressor and a maximal correlation solver")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &GPACE{regressor: regressor, solver: solver, table: table, logger: logger}, nil
}

func (g *GPACE) Name() string        { return "gp_ace" }
func (g *GPACE) TwoSided() bool      { return false }
func (g *GPACE) ResidualBased() bool { return true }

// Estimate returns the maximal correlation of the X and Y residuals
func (g *GPACE) Estimate(ctx context.Context, arr *dataset.Array) (float64, error) {
	x, _, err := g.residual(ctx, arr, 0)
	if err != nil {
		return 0, err
	}
	y, _, err := g.residual(ctx, arr, 1)
	if err != nil {
		return 0, err
	}
	return g.maxCorr(ctx, x, y)
}

// Residuals returns the regression residual of the target row on Z
func (g *GPACE) Residuals(ctx context.Context, arr *dataset.Array, target int) ([]float64, error) {
	resid, _, err := g.residual(ctx, arr, target)
	return resid, err
}

// residual also returns the log marginal likelihood of the fit. Without
// conditions the raw row is returned with a likelihood of -Inf.
func (g *GPACE) residual(ctx context.Context, arr *dataset.Array, target int) ([]float64, float64, error) {
	_, T := arr.Dims()
	row, err := targetRow(arr, target)
	if err != nil {
		return nil, 0, err
	}
	z := arr.Indices(core.RoleZ)
	if len(z) == 0 {
		return append([]float64(nil), arr.Row(row)...), math.Inf(-1), nil
	}

	std, err := standardize(arr.Values)
	if err != nil {
		return nil, 0, err
	}
	features := mat.NewDense(T, len(z), nil)
	for k, i := range z {
		features.SetCol(k, std.RawRowView(i))
	}
	y := std.RawRowView(row)

	fit, err := g.regressor.Fit(ctx, features, y)
	if err != nil {
		return nil, 0, errors.Wrap(err, "regression on conditions failed")
	}
	if len(fit.Predictions) != T {
		return nil, 0, errors.Newf(errors.CodeInternalError, "regressor returned %d predictions for %d samples", len(fit.Predictions), T)
	}
	resid := make([]float64, T)
	for t := range resid {
		resid[t] = y[t] - fit.Predictions[t]
	}
	return resid, fit.LogLikelihood, nil
}

// maxCorr transforms both series to uniform marginals and runs the solver quietly
func (g *GPACE) maxCorr(ctx context.Context, x, y []float64) (float64, error) {
	u, v := toUniform(x), toUniform(y)
	var val float64
	err := g.logger.Quiet(func() error {
		var err error
		val, err = g.solver.Solve(ctx, u, v)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "maximal correlation solver failed")
	}
	return val, nil
}

// AnalyticPValue looks up the tabulated null distribution whose sample size
// is nearest to df. The statistic is one-sided. It is NaN when df < 1.
func (g *GPACE) AnalyticPValue(value float64, df int) (float64, error) {
	if df < 1 {
		return math.NaN(), nil
	}
	if g.table == nil || len(g.table.SampleSizes()) == 0 {
		return 0, errors.InvalidConfig("no null distribution table configured for GPACE")
	}

	sizes := g.table.SampleSizes()
	near := 0
	for i, s := range sizes {
		if absInt(s-df) < absInt(sizes[near]-df) {
			near = i
		}
	}
	if float64(absInt(sizes[near]-df))/float64(df) > nullSizeTolerance {
		lo, hi := near-1, near+2
		if lo < 0 {
			lo = 0
		}
		if hi > len(sizes) {
			hi = len(sizes)
		}
		return 0, errors.InvalidConfig("null distribution for GPACE not available for deg. of freed. = %d, nearest values = %v; generate a null distribution for this sample size", df, sizes[lo:hi])
	}

	null := g.table.Distribution(near)
	if len(null) == 0 {
		return 0, errors.InvalidConfig("null distribution for sample size %d is empty", sizes[near])
	}
	exceed := 0
	for _, v := range null {
		if v > math.Abs(value) {
			exceed++
		}
	}
	return float64(exceed) / float64(len(null)), nil
}

// ModelScore is the negative log marginal likelihood of the regression of Y on Z
func (g *GPACE) ModelScore(ctx context.Context, arr *dataset.Array) (float64, error) {
	_, ll, err := g.residual(ctx, arr, 1)
	if err != nil {
		return 0, err
	}
	return -ll, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
