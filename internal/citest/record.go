package citest

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"gocit/domain/core"
)

// NullSummary condenses a resampled distribution
type NullSummary struct {
	Kind    string // shuffle or bootstrap
	Samples int
	Mean    float64
	Std     float64
	P95     float64
	P99     float64
}

// summarize describes a sorted distribution. Percentiles of very small
// distributions are left at NaN.
func summarize(kind string, dist []float64) *NullSummary {
	s := &NullSummary{Kind: kind, Samples: len(dist), P95: math.NaN(), P99: math.NaN()}
	data := stats.Float64Data(dist)
	s.Mean, _ = stats.Mean(data)
	s.Std, _ = stats.StandardDeviation(data)
	if p, err := stats.Percentile(data, 95); err == nil {
		s.P95 = p
	}
	if p, err := stats.Percentile(data, 99); err == nil {
		s.P99 = p
	}
	return s
}

// Record is the outcome of the last test a runner computed.
// PValue, Lower and Upper are NaN when not computed.
type Record struct {
	Runner  core.RunnerID
	X, Y, Z core.NodeSet
	TauMax  int
	Samples int // T_eff after alignment and masking

	Value  float64
	PValue float64
	Lower  float64
	Upper  float64

	Null *NullSummary
}

func newRecord(runner core.RunnerID, x, y, z core.NodeSet, tauMax, samples int, value float64) *Record {
	return &Record{
		Runner:  runner,
		X:       x,
		Y:       y,
		Z:       z,
		TauMax:  tauMax,
		Samples: samples,
		Value:   value,
		PValue:  math.NaN(),
		Lower:   math.NaN(),
		Upper:   math.NaN(),
	}
}

// HasConfidence reports whether both interval bounds are set
func (r *Record) HasConfidence() bool {
	return !math.IsNaN(r.Lower) && !math.IsNaN(r.Upper)
}

// String formats the record as "pval = 0.01234 | val = 0.456 | conf bounds = (0.400, 0.500)"
func (r *Record) String() string {
	var s string
	if math.IsNaN(r.PValue) {
		s = fmt.Sprintf("val = %.3f", r.Value)
	} else {
		s = fmt.Sprintf("pval = %.5f | val = %.3f", r.PValue, r.Value)
	}
	if r.HasConfidence() {
		s += fmt.Sprintf(" | conf bounds = (%.3f, %.3f)", r.Lower, r.Upper)
	}
	return s
}

// testKey identifies a test by its cleaned node sets
func testKey(x, y, z core.NodeSet, tauMax int) string {
	return fmt.Sprintf("%s|%s|%s|%d", x.Key(), y.Key(), z.Key(), tauMax)
}
