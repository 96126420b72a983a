package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"gocit/domain/core"
)

// Array is the aligned sample matrix of one test: one row per node, X rows
// first, then Y, then Z, and one column per usable time step.
type Array struct {
	Values *mat.Dense
	Roles  []core.Role
}

// NewArray wraps a (dim, T) matrix and its role vector
func NewArray(values *mat.Dense, roles []core.Role) *Array {
	return &Array{Values: values, Roles: roles}
}

// ArrayFromRows builds an Array from rows of equal length
func ArrayFromRows(rows [][]float64, roles []core.Role) *Array {
	t := len(rows[0])
	flat := make([]float64, 0, len(rows)*t)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return &Array{Values: mat.NewDense(len(rows), t, flat), Roles: roles}
}

// Dims returns (dim, T)
func (a *Array) Dims() (int, int) {
	return a.Values.Dims()
}

// Row returns row i without copying
func (a *Array) Row(i int) []float64 {
	return a.Values.RawRowView(i)
}

// Indices returns the row indices tagged with role r
func (a *Array) Indices(r core.Role) []int {
	var idx []int
	for i, role := range a.Roles {
		if role == r {
			idx = append(idx, i)
		}
	}
	return idx
}

// Count returns the number of rows tagged with role r
func (a *Array) Count(r core.Role) int {
	n := 0
	for _, role := range a.Roles {
		if role == r {
			n++
		}
	}
	return n
}

// Clone deep-copies values and roles
func (a *Array) Clone() *Array {
	roles := make([]core.Role, len(a.Roles))
	copy(roles, a.Roles)
	return &Array{Values: mat.DenseCopyOf(a.Values), Roles: roles}
}

// HasNaN reports whether any value is NaN
func (a *Array) HasNaN() bool {
	dim, _ := a.Dims()
	for i := 0; i < dim; i++ {
		for _, v := range a.Row(i) {
			if math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}

// ResidualPair builds the 2-row (X, Y) array that residual-based measures work on
func ResidualPair(x, y []float64) *Array {
	return ArrayFromRows([][]float64{x, y}, []core.Role{core.RoleX, core.RoleY})
}
