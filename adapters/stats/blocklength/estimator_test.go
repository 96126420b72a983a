package blocklength

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal/errors"
	"gocit/internal/metrics"
	"gocit/internal/testkit"
)

func TestACFOfAR1(t *testing.T) {
	series := testkit.NewProcessGenerator(testkit.DefaultProcessConfig()).AR1(5000, 0.8)
	acf := ACF(series, 5)

	require.Len(t, acf, 6)
	assert.Equal(t, 1.0, acf[0])
	assert.InDelta(t, 0.8, acf[1], 0.05)
	assert.InDelta(t, 0.64, acf[2], 0.06)
}

func TestEnvelopeOfPeriodicCosine(t *testing.T) {
	// Scenario: the analytic signal of a whole-period cosine is a unit phasor
	const n = 64
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * 4 * float64(i) / n)
	}
	for i, v := range Envelope(x) {
		assert.InDelta(t, 1.0, v, 1e-9, "index %d", i)
	}
}

func TestEnvelopeOddLength(t *testing.T) {
	const n = 45
	x := make([]float64, n)
	for i := range x {
		x[i] = 3 * math.Sin(2*math.Pi*5*float64(i)/n)
	}
	for i, v := range Envelope(x) {
		assert.InDelta(t, 3.0, v, 1e-9, "index %d", i)
	}
}

func TestFitDecayRecoversParameters(t *testing.T) {
	y := make([]float64, 30)
	for x := range y {
		y[x] = 2 * math.Pow(0.7, float64(x))
	}
	fit, err := FitDecay(y)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fit.Amplitude, 1e-3)
	assert.InDelta(t, 0.7, fit.Decay, 1e-3)
}

func TestFitDecayFailures(t *testing.T) {
	_, err := FitDecay([]float64{1})
	assert.True(t, errors.IsNumericalFitFailure(err))

	_, err = FitDecay([]float64{1, math.NaN(), 0.2})
	assert.True(t, errors.IsNumericalFitFailure(err))
}

func TestOptimalLength(t *testing.T) {
	assert.Equal(t, 0.0, OptimalLength(1000, 0))
	assert.Equal(t, 0.0, OptimalLength(1000, -0.3))

	prev := 0.0
	for _, phi := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		l := OptimalLength(1000, phi)
		assert.Greater(t, l, prev, "phi %.1f", phi)
		prev = l
	}
	// phi = 0.5: ((4T * 2^2) / 3^2)^(1/3)
	assert.InDelta(t, math.Cbrt(4*1000*4.0/9.0), OptimalLength(1000, 0.5), 1e-9)
}

func TestEstimateBounds(t *testing.T) {
	gen := testkit.NewProcessGenerator(testkit.DefaultProcessConfig())
	e := NewEstimator(nil, nil)

	for _, T := range []int{50, 73, 200, 1000} {
		for _, phi := range []float64{0, 0.5, 0.95} {
			arr := dataset.ArrayFromRows(
				[][]float64{gen.AR1(T, phi), gen.AR1(T, phi)},
				[]core.Role{core.RoleX, core.RoleY},
			)
			for _, mode := range []Mode{ModeSignificance, ModeConfidence} {
				l := e.Estimate(arr, mode)
				assert.GreaterOrEqual(t, l, 1, "T=%d phi=%.2f %s", T, phi, mode)
				assert.LessOrEqual(t, l, int(0.1*float64(T)), "T=%d phi=%.2f %s", T, phi, mode)
			}
		}
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	gen := testkit.NewProcessGenerator(testkit.DefaultProcessConfig())
	arr := dataset.ArrayFromRows(
		[][]float64{gen.AR1(500, 0.7), gen.AR1(500, 0.2)},
		[]core.Role{core.RoleX, core.RoleY},
	)
	e := NewEstimator(nil, nil)
	assert.Equal(t, e.Estimate(arr, ModeConfidence), e.Estimate(arr, ModeConfidence))
}

func TestEstimateConfidenceCoversSignificanceRows(t *testing.T) {
	// Scenario: confidence mode maximises over a superset of the rows
	gen := testkit.NewProcessGenerator(testkit.DefaultProcessConfig())
	arr := dataset.ArrayFromRows(
		[][]float64{gen.AR1(1000, 0), gen.AR1(1000, 0), gen.AR1(1000, 0.95)},
		[]core.Role{core.RoleX, core.RoleY, core.RoleZ},
	)
	e := NewEstimator(nil, nil)
	assert.GreaterOrEqual(t, e.Estimate(arr, ModeConfidence), e.Estimate(arr, ModeSignificance))
}

func TestEstimateFallsBackOnConstantRow(t *testing.T) {
	// Scenario: a constant X row has an undefined autocorrelation
	constant := make([]float64, 200)
	other := testkit.NewProcessGenerator(testkit.DefaultProcessConfig()).AR1(200, 0)
	arr := dataset.ArrayFromRows([][]float64{constant, other}, []core.Role{core.RoleX, core.RoleY})

	m := metrics.NewMetrics(prometheus.NewRegistry(), "test")
	l := NewEstimator(nil, m).Estimate(arr, ModeSignificance)

	assert.Equal(t, 10, l)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FitFallbacksTotal))
}

func TestEstimateShortSeries(t *testing.T) {
	arr := dataset.ArrayFromRows([][]float64{{1, 2, 3, 2, 1}, {0, 1, 0, 1, 0}}, []core.Role{core.RoleX, core.RoleY})
	assert.Equal(t, 1, NewEstimator(nil, nil).Estimate(arr, ModeConfidence))
}
