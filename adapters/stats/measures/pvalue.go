package measures

import "math"

// FixedThresPValue is 1 when |value| is below |threshold| and 0 otherwise
func FixedThresPValue(value, threshold float64) float64 {
	if math.Abs(value) < math.Abs(threshold) {
		return 1
	}
	return 0
}

// ShufflePValue is the fraction of the null distribution at or above |value|.
// Two-sided measures double it, clamped to 1.
func ShufflePValue(null []float64, value float64, twoSided bool) float64 {
	if len(null) == 0 {
		return math.NaN()
	}
	exceed := 0
	for _, v := range null {
		if v >= math.Abs(value) {
			exceed++
		}
	}
	p := float64(exceed) / float64(len(null))
	if twoSided {
		p = math.Min(2*p, 1)
	}
	return p
}

// Quantiles returns the order statistics at (1-c)*N and c*N of a sorted
// distribution, with c = 1 - (1-confLev)/2
func Quantiles(sorted []float64, confLev float64) (float64, float64) {
	n := len(sorted)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	c := 1 - (1-confLev)/2
	lo := int((1 - c) * float64(n))
	hi := int(c * float64(n))
	if hi >= n {
		hi = n - 1
	}
	return sorted[lo], sorted[hi]
}
