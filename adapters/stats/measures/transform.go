package measures

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"gocit/internal/errors"
)

// standardize returns a copy of values with every row shifted to zero mean
// and scaled to unit population variance
func standardize(values *mat.Dense) (*mat.Dense, error) {
	out := mat.DenseCopyOf(values)
	dim, _ := out.Dims()
	for i := 0; i < dim; i++ {
		row := out.RawRowView(i)
		mean, std := stat.PopMeanStdDev(row, nil)
		for j := range row {
			row[j] = (row[j] - mean) / std
			if math.IsNaN(row[j]) {
				return nil, errors.DataQuality("nans after standardizing row %d, possibly constant array", i)
			}
		}
	}
	return out, nil
}

// toUniform maps x onto its empirical CDF, so the smallest value becomes 1/n
// and the largest 1. Ties share the rank of their last occurrence.
func toUniform(x []float64) []float64 {
	n := len(x)
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	u := make([]float64, n)
	for i, v := range x {
		upper := sort.Search(n, func(j int) bool { return sorted[j] > v })
		u[i] = float64(upper) / float64(n)
	}
	return u
}

// uniformRows applies toUniform to every row of a copy of values
func uniformRows(values *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(values)
	dim, _ := out.Dims()
	for i := 0; i < dim; i++ {
		copy(out.RawRowView(i), toUniform(out.RawRowView(i)))
	}
	return out
}
