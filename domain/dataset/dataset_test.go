package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"gocit/domain/core"
	"gocit/internal/errors"
)

func TestFromColumns(t *testing.T) {
	df, err := FromColumns([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	T, N := df.Dims()
	assert.Equal(t, 3, T)
	assert.Equal(t, 2, N)
	assert.Equal(t, 5.0, df.Values.At(1, 1))

	_, err = FromColumns([]float64{1, 2}, []float64{1})
	assert.True(t, errors.IsInvalidSpec(err))
}

func TestNewDataFrameMaskShape(t *testing.T) {
	values := mat.NewDense(4, 2, nil)
	_, err := NewDataFrame(values, NewMask(3, 2))
	assert.True(t, errors.IsInvalidSpec(err))

	df, err := NewDataFrame(values, NewMask(4, 2))
	require.NoError(t, err)
	df.Mask.Set(2, 1, true)
	assert.True(t, df.Mask.At(2, 1))
	assert.False(t, df.Mask.At(2, 0))
}

func TestArrayRolesAndClone(t *testing.T) {
	a := ArrayFromRows([][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}},
		[]core.Role{core.RoleX, core.RoleY, core.RoleZ, core.RoleZ})
	assert.Equal(t, []int{2, 3}, a.Indices(core.RoleZ))
	assert.Equal(t, 1, a.Count(core.RoleX))

	c := a.Clone()
	c.Values.Set(0, 0, 100)
	assert.Equal(t, 1.0, a.Values.At(0, 0))
	assert.False(t, a.HasNaN())

	c.Values.Set(3, 1, math.NaN())
	assert.True(t, c.HasNaN())
}
