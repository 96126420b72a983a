package measures

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal/errors"
)

// ParCorr is the partial correlation of X and Y given Z: the Pearson
// correlation of the OLS residuals of X and Y regressed on Z.
type ParCorr struct{}

// NewParCorr creates the partial correlation measure
func NewParCorr() *ParCorr {
	return &ParCorr{}
}

// Name returns the measure name
func (p *ParCorr) Name() string { return "par_corr" }

// TwoSided is true: correlations are symmetric around zero under the null
func (p *ParCorr) TwoSided() bool { return true }

// ResidualBased is true
func (p *ParCorr) ResidualBased() bool { return true }

// Estimate returns the partial correlation coefficient
func (p *ParCorr) Estimate(ctx context.Context, arr *dataset.Array) (float64, error) {
	std, err := standardize(arr.Values)
	if err != nil {
		return 0, err
	}
	z := arr.Indices(core.RoleZ)
	resid := make([][]float64, 2)
	for target := range resid {
		row, err := targetRow(arr, target)
		if err != nil {
			return 0, err
		}
		if resid[target], err = olsResidual(std, row, z); err != nil {
			return 0, err
		}
	}
	return stat.Correlation(resid[0], resid[1], nil), nil
}

// Residuals returns the residual of the standardized target row regressed on Z
func (p *ParCorr) Residuals(ctx context.Context, arr *dataset.Array, target int) ([]float64, error) {
	row, err := targetRow(arr, target)
	if err != nil {
		return nil, err
	}
	std, err := standardize(arr.Values)
	if err != nil {
		return nil, err
	}
	return olsResidual(std, row, arr.Indices(core.RoleZ))
}

// AnalyticPValue is the two-sided Student's t p-value of the correlation.
// It is NaN when df < 1.
func (p *ParCorr) AnalyticPValue(value float64, df int) (float64, error) {
	if df < 1 {
		return math.NaN(), nil
	}
	n := float64(df)
	t := value * math.Sqrt(n/(1-value*value))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n}
	return 2 * dist.Survival(math.Abs(t)), nil
}

// AnalyticInterval inverts the t-distribution around the transformed estimate
func (p *ParCorr) AnalyticInterval(value float64, df int, confLev float64) (float64, float64, error) {
	if df < 1 {
		return math.NaN(), math.NaN(), nil
	}
	c := 1 - (1-confLev)/2
	n := float64(df)
	valueT := value * math.Sqrt(n) / math.Sqrt(1-value*value)
	dist := distuv.StudentsT{Mu: valueT, Sigma: 1, Nu: n}

	back := func(q float64) float64 { return q / math.Sqrt(n+q*q) }
	return back(dist.Quantile(1 - c)), back(dist.Quantile(c)), nil
}

// ModelScore is Akaike's criterion up to constants for the linear model of
// Y on Z: T*log(RSS) + 2*(dim-1)
func (p *ParCorr) ModelScore(ctx context.Context, arr *dataset.Array) (float64, error) {
	dim, T := arr.Dims()
	resid, err := p.Residuals(ctx, arr, 1)
	if err != nil {
		return 0, err
	}
	var rss float64
	for _, r := range resid {
		rss += r * r
	}
	return float64(T)*math.Log(rss) + 2*float64(dim-1), nil
}

// targetRow returns the row of the first X (target 0) or Y (target 1) node
func targetRow(arr *dataset.Array, target int) (int, error) {
	var role core.Role
	switch target {
	case 0:
		role = core.RoleX
	case 1:
		role = core.RoleY
	default:
		return 0, errors.InvalidSpec("residual target must be 0 (X) or 1 (Y), got %d", target)
	}
	for i, r := range arr.Roles {
		if r == role {
			return i, nil
		}
	}
	return 0, errors.InvalidSpec("array has no %s row", role)
}

// olsResidual regresses row target of values on the rows in z and returns
// the residual. The normal equations are solved by Cholesky, falling back
// to a QR least-squares solve when Z'Z is not positive definite.
func olsResidual(values *mat.Dense, target int, z []int) ([]float64, error) {
	_, T := values.Dims()
	y := append([]float64(nil), values.RawRowView(target)...)
	if len(z) == 0 {
		return y, nil
	}

	zm := mat.NewDense(len(z), T, nil)
	for k, i := range z {
		zm.SetRow(k, values.RawRowView(i))
	}
	yv := mat.NewVecDense(T, y)

	var gram mat.SymDense
	gram.SymOuterK(1, zm)
	var rhs mat.VecDense
	rhs.MulVec(zm, yv)

	var beta mat.VecDense
	var chol mat.Cholesky
	solved := false
	if chol.Factorize(&gram) {
		solved = chol.SolveVecTo(&beta, &rhs) == nil
	}
	if !solved {
		if err := beta.SolveVec(zm.T(), yv); err != nil {
			return nil, errors.DataQuality("least squares on conditions failed: %v", err)
		}
	}

	var fitted mat.VecDense
	fitted.MulVec(zm.T(), &beta)
	resid := make([]float64, T)
	for t := range resid {
		resid[t] = y[t] - fitted.AtVec(t)
	}
	return resid, nil
}
