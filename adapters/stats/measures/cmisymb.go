package measures

import (
	"context"
	"math"

	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal/errors"
)

// CMISymb estimates conditional mutual information of symbolic data from
// the joint histogram of all rows. Values must be non-negative integers.
type CMISymb struct{}

// NewCMISymb creates the discrete CMI measure
func NewCMISymb() *CMISymb {
	return &CMISymb{}
}

func (c *CMISymb) Name() string        { return "cmi_symb" }
func (c *CMISymb) TwoSided() bool      { return false }
func (c *CMISymb) ResidualBased() bool { return false }
func (c *CMISymb) Discrete() bool      { return true }

// maxHistogramGB bounds the memory a joint histogram may claim
const maxHistogramGB = 3.0

// Estimate returns H(XZ) + H(YZ) - H(Z) - H(XYZ) in nats
func (c *CMISymb) Estimate(ctx context.Context, arr *dataset.Array) (float64, error) {
	dim, T := arr.Dims()
	hist, bins, err := jointHistogram(arr)
	if err != nil {
		return 0, err
	}

	plogp := plogpTable(T)
	entropy := func(counts map[int]int) float64 {
		var s float64
		for _, n := range counts {
			s += plogp[n]
		}
		return (-s + plogp[T]) / float64(T)
	}

	keepAll := make([]bool, dim)
	keepXZ := make([]bool, dim)
	keepYZ := make([]bool, dim)
	keepZ := make([]bool, dim)
	for i, r := range arr.Roles {
		keepAll[i] = true
		keepXZ[i] = r != core.RoleY
		keepYZ[i] = r != core.RoleX
		keepZ[i] = r == core.RoleZ
	}

	hxyz := entropy(marginalize(hist, bins, keepAll))
	hxz := entropy(marginalize(hist, bins, keepXZ))
	hyz := entropy(marginalize(hist, bins, keepYZ))
	hz := entropy(marginalize(hist, bins, keepZ))

	return hxz + hyz - hz - hxyz, nil
}

// jointHistogram counts each column's mixed-radix code sum_i s_i * bins^i.
// Only occupied cells are stored.
func jointHistogram(arr *dataset.Array) (map[int]int, int, error) {
	dim, T := arr.Dims()

	maxSymbol := 0
	for i := 0; i < dim; i++ {
		for _, v := range arr.Row(i) {
			if v < 0 || v != math.Trunc(v) {
				return nil, 0, errors.DataQuality("symbolic data must be non-negative integers, got %v in row %d", v, i)
			}
			if int(v) > maxSymbol {
				maxSymbol = int(v)
			}
		}
	}
	bins := maxSymbol + 1

	cells := math.Pow(float64(bins), float64(dim))
	if cells*16/8/math.Pow(1024, 3) > maxHistogramGB {
		return nil, 0, errors.InvalidConfig("base = %d, D = %d: dimension exceeds %.0f GB of necessary memory", bins, dim, maxHistogramGB)
	}
	if float64(dim)*cells > math.Pow(2, 65) || cells > math.MaxInt64 {
		return nil, 0, errors.InvalidConfig("base = %d, D = %d: histogram failed, D*base**D exceeds int64 data type", bins, dim)
	}

	hist := make(map[int]int)
	for t := 0; t < T; t++ {
		code, radix := 0, 1
		for i := 0; i < dim; i++ {
			code += int(arr.Values.At(i, t)) * radix
			radix *= bins
		}
		hist[code]++
	}
	return hist, bins, nil
}

// marginalize sums the joint histogram over every dimension with keep[i] false
func marginalize(hist map[int]int, bins int, keep []bool) map[int]int {
	out := make(map[int]int, len(hist))
	for code, n := range hist {
		sub, radix := 0, 1
		rest := code
		for _, k := range keep {
			digit := rest % bins
			rest /= bins
			if k {
				sub += digit * radix
				radix *= bins
			}
		}
		out[sub] += n
	}
	return out
}

// plogpTable returns g with g[n] = n*log(n) for n in 0..T
func plogpTable(T int) []float64 {
	g := make([]float64, T+1)
	for n := 1; n <= T; n++ {
		g[n] = float64(n) * math.Log(float64(n))
	}
	return g
}
