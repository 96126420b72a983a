package dataset

import (
	"gonum.org/v1/gonum/mat"

	"gocit/domain/core"
	"gocit/internal/errors"
)

// Mask marks unusable observations. Shape matches the data it belongs to.
type Mask struct {
	rows, cols int
	data       []bool // row-major
}

// NewMask creates an all-false mask of shape (T, N)
func NewMask(t, n int) *Mask {
	return &Mask{rows: t, cols: n, data: make([]bool, t*n)}
}

// MaskFromRows builds a mask from rows of equal length
func MaskFromRows(rows [][]bool) (*Mask, error) {
	if len(rows) == 0 {
		return nil, errors.InvalidSpec("mask must have at least one row")
	}
	m := NewMask(len(rows), len(rows[0]))
	for t, row := range rows {
		if len(row) != m.cols {
			return nil, errors.InvalidSpec("mask row %d has %d columns, expected %d", t, len(row), m.cols)
		}
		copy(m.data[t*m.cols:], row)
	}
	return m, nil
}

// Dims returns (T, N)
func (m *Mask) Dims() (int, int) {
	return m.rows, m.cols
}

// At reports whether observation t of variable v is masked
func (m *Mask) At(t, v int) bool {
	return m.data[t*m.cols+v]
}

// Set marks or unmarks observation t of variable v
func (m *Mask) Set(t, v int, masked bool) {
	m.data[t*m.cols+v] = masked
}

// DataFrame is the raw multivariate time series: T observations of N variables
type DataFrame struct {
	Values *mat.Dense
	Mask   *Mask // optional
}

// NewDataFrame validates that an optional mask matches the data shape
func NewDataFrame(values *mat.Dense, mask *Mask) (*DataFrame, error) {
	if values == nil || values.IsEmpty() {
		return nil, errors.InvalidSpec("data must be a non-empty (T, N) array")
	}
	if mask != nil {
		t, n := values.Dims()
		mt, mn := mask.Dims()
		if mt != t || mn != n {
			return nil, errors.InvalidSpec("mask shape (%d, %d) does not match data shape (%d, %d)", mt, mn, t, n)
		}
	}
	return &DataFrame{Values: values, Mask: mask}, nil
}

// FromRows builds an unmasked DataFrame from T rows of N values
func FromRows(rows [][]float64) (*DataFrame, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.InvalidSpec("data must be a non-empty (T, N) array")
	}
	n := len(rows[0])
	flat := make([]float64, 0, len(rows)*n)
	for t, row := range rows {
		if len(row) != n {
			return nil, errors.InvalidSpec("row %d has %d columns, expected %d", t, len(row), n)
		}
		flat = append(flat, row...)
	}
	return &DataFrame{Values: mat.NewDense(len(rows), n, flat)}, nil
}

// FromColumns builds an unmasked DataFrame from N series of equal length T
func FromColumns(cols ...[]float64) (*DataFrame, error) {
	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil, errors.InvalidSpec("data must be a non-empty (T, N) array")
	}
	t := len(cols[0])
	values := mat.NewDense(t, len(cols), nil)
	for v, col := range cols {
		if len(col) != t {
			return nil, errors.InvalidSpec("series %d has length %d, expected %d", v, len(col), t)
		}
		values.SetCol(v, col)
	}
	return &DataFrame{Values: values}, nil
}

// Dims returns (T, N)
func (d *DataFrame) Dims() (int, int) {
	return d.Values.Dims()
}

// Fingerprint hashes the values so records can be tied to the data they came from
func (d *DataFrame) Fingerprint() core.Hash {
	t, n := d.Values.Dims()
	flat := make([]float64, 0, t*n)
	for i := 0; i < t; i++ {
		flat = append(flat, d.Values.RawRowView(i)...)
	}
	return core.HashFloats(t, n, flat)
}
