package blocklength

import (
	"math"

	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal"
	"gocit/internal/errors"
	"gocit/internal/metrics"
)

var errDecayNotBelowOne = errors.NumericalFitFailure("fitted decay rate is not below one")

// Mode selects which rows drive the estimate
type Mode int

const (
	// ModeSignificance uses only the X rows, the rows that get shuffled
	ModeSignificance Mode = iota
	// ModeConfidence uses every row, since bootstrap resamples all of them jointly
	ModeConfidence
)

func (m Mode) String() string {
	if m == ModeSignificance {
		return "significance"
	}
	return "confidence"
}

// Estimator computes the optimal block length for block resampling
// following Mader (2013), Eq. (6), with non-overlapping blocks.
type Estimator struct {
	logger  *internal.Logger
	metrics *metrics.Metrics
}

// NewEstimator creates an Estimator; both arguments may be nil
func NewEstimator(logger *internal.Logger, m *metrics.Metrics) *Estimator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Estimator{logger: logger, metrics: m}
}

// Estimate returns a block length in [1, max(1, floor(0.1*T))]
func (e *Estimator) Estimate(arr *dataset.Array, mode Mode) int {
	dim, T := arr.Dims()

	var rows []int
	if mode == ModeSignificance {
		rows = arr.Indices(core.RoleX)
	} else {
		rows = make([]int, dim)
		for i := range rows {
			rows[i] = i
		}
	}

	maxLag := T / 10
	blockLen := 1
	for _, i := range rows {
		env := Envelope(ACF(arr.Row(i), maxLag))

		fit, err := FitDecay(env)
		if err == nil && fit.Decay >= 1 {
			err = errDecayNotBelowOne
		}
		if err != nil {
			fallback := int(0.05 * float64(T))
			if fallback < 2 {
				fallback = 2
			}
			e.logger.Warn("autocorrelation decay fit failed for row %d (%v), using block length %d", i, err, fallback)
			e.metrics.FitFallback()
			if fallback > blockLen {
				blockLen = fallback
			}
			continue
		}

		if l := int(OptimalLength(T, fit.Decay)); l > blockLen {
			blockLen = l
		}
	}

	if limit := int(0.1 * float64(T)); blockLen > limit {
		blockLen = limit
	}
	if blockLen < 1 {
		blockLen = 1
	}
	e.logger.Debug("block length %d for %s with T = %d", blockLen, mode, T)
	return blockLen
}

// OptimalLength is the Pfeifer (2005) block length for decay rate phi.
// Negative rates are treated as zero.
func OptimalLength(T int, phi float64) float64 {
	if phi < 0 {
		phi = 0
	}
	r := phi / (1 - phi)
	num := r + phi*phi/((1-phi)*(1-phi))
	den := 1 + 2*r
	return math.Cbrt(4 * float64(T) * num * num / (den * den))
}
