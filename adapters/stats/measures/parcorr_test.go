package measures

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal/errors"
)

var (
	rolesXY  = []core.Role{core.RoleX, core.RoleY}
	rolesXYZ = []core.Role{core.RoleX, core.RoleY, core.RoleZ}
)

func normals(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

// commonCause returns x = z + s*e1 and y = z + s*e2
func commonCause(rng *rand.Rand, n int, s float64) (x, y, z []float64) {
	z = normals(rng, n)
	x, y = make([]float64, n), make([]float64, n)
	for i := range z {
		x[i] = z[i] + s*rng.NormFloat64()
		y[i] = z[i] + s*rng.NormFloat64()
	}
	return x, y, z
}

func TestParCorrPerfectLinear(t *testing.T) {
	x := normals(rand.New(rand.NewSource(1)), 200)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = 3 * x[i]
	}
	val, err := NewParCorr().Estimate(context.Background(), dataset.ArrayFromRows([][]float64{x, y}, rolesXY))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, val, 1e-9)
}

func TestParCorrIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	arr := dataset.ArrayFromRows([][]float64{normals(rng, 1000), normals(rng, 1000)}, rolesXY)
	val, err := NewParCorr().Estimate(context.Background(), arr)
	require.NoError(t, err)
	assert.Less(t, math.Abs(val), 0.1)
}

func TestParCorrRemovesCommonCause(t *testing.T) {
	x, y, z := commonCause(rand.New(rand.NewSource(3)), 1000, 1)
	p := NewParCorr()

	marginal, err := p.Estimate(context.Background(), dataset.ArrayFromRows([][]float64{x, y}, rolesXY))
	require.NoError(t, err)
	assert.Greater(t, marginal, 0.4)

	partial, err := p.Estimate(context.Background(), dataset.ArrayFromRows([][]float64{x, y, z}, rolesXYZ))
	require.NoError(t, err)
	assert.Less(t, math.Abs(partial), 0.1)
}

func TestParCorrResidualsAreOrthogonalToZ(t *testing.T) {
	x, y, z := commonCause(rand.New(rand.NewSource(4)), 300, 0.5)
	arr := dataset.ArrayFromRows([][]float64{x, y, z}, rolesXYZ)
	std, err := standardize(arr.Values)
	require.NoError(t, err)

	resid, err := NewParCorr().Residuals(context.Background(), arr, 0)
	require.NoError(t, err)
	var dot float64
	for i, r := range resid {
		dot += r * std.At(2, i)
	}
	assert.InDelta(t, 0, dot, 1e-8)
}

func TestParCorrConstantRowIsDataQuality(t *testing.T) {
	arr := dataset.ArrayFromRows([][]float64{{1, 1, 1, 1}, {1, 2, 3, 4}}, rolesXY)
	_, err := NewParCorr().Estimate(context.Background(), arr)
	assert.True(t, errors.IsDataQuality(err))
}

func TestParCorrMissingRoleIsInvalidSpec(t *testing.T) {
	arr := dataset.ArrayFromRows([][]float64{{1, 2, 3, 4}, {4, 1, 3, 2}}, []core.Role{core.RoleX, core.RoleZ})
	p := NewParCorr()

	_, err := p.Residuals(context.Background(), arr, 1)
	assert.True(t, errors.IsInvalidSpec(err))
	_, err = p.Estimate(context.Background(), arr)
	assert.True(t, errors.IsInvalidSpec(err))
	_, err = p.Residuals(context.Background(), arr, 2)
	assert.True(t, errors.IsInvalidSpec(err))
}

func TestParCorrAnalyticPValue(t *testing.T) {
	p := NewParCorr()

	pval, err := p.AnalyticPValue(0, 100)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pval, 1e-12)

	pval, err = p.AnalyticPValue(0.5, 100)
	require.NoError(t, err)
	assert.Less(t, pval, 1e-5)

	neg, err := p.AnalyticPValue(-0.2, 50)
	require.NoError(t, err)
	pos, err := p.AnalyticPValue(0.2, 50)
	require.NoError(t, err)
	assert.InDelta(t, pos, neg, 1e-12)

	pval, err = p.AnalyticPValue(0.3, 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(pval))
}

func TestParCorrAnalyticInterval(t *testing.T) {
	lo, hi, err := NewParCorr().AnalyticInterval(0.3, 200, 0.9)
	require.NoError(t, err)
	assert.Less(t, lo, 0.3)
	assert.Greater(t, hi, 0.3)
	assert.Greater(t, lo, 0.0)

	loWide, hiWide, err := NewParCorr().AnalyticInterval(0.3, 200, 0.99)
	require.NoError(t, err)
	assert.Less(t, loWide, lo)
	assert.Greater(t, hiWide, hi)
}

func TestParCorrModelScorePrefersTrueParent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	parent := normals(rng, 500)
	noise := normals(rng, 500)
	y := make([]float64, 500)
	for i := range y {
		y[i] = 2*parent[i] + 0.3*rng.NormFloat64()
	}

	p := NewParCorr()
	good, err := p.ModelScore(context.Background(), dataset.ArrayFromRows([][]float64{y, y, parent}, rolesXYZ))
	require.NoError(t, err)
	bad, err := p.ModelScore(context.Background(), dataset.ArrayFromRows([][]float64{y, y, noise}, rolesXYZ))
	require.NoError(t, err)
	assert.Less(t, good, bad)
}
