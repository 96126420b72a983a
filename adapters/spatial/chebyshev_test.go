package spatial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"gocit/internal/errors"
)

func linePoints() *mat.Dense {
	// samples on a line in the first column, constant second column except the last
	return mat.NewDense(4, 2, []float64{
		0, 0,
		1, 0,
		3, 0,
		7, 5,
	})
}

func TestKthNearestDistance(t *testing.T) {
	b := NewBruteForce()
	d, err := b.KthNearestDistance(context.Background(), linePoints(), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 2, 5}, d)

	d, err = b.KthNearestDistance(context.Background(), linePoints(), 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 3, 6}, d)
}

func TestKthNearestDistanceRejectsLargeK(t *testing.T) {
	_, err := NewBruteForce().KthNearestDistance(context.Background(), linePoints(), 4)
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestCountWithinRadius(t *testing.T) {
	b := NewBruteForce()
	radii := []float64{1.5, 1.5, 2.5, 4.5}

	counts, err := b.CountWithinRadius(context.Background(), linePoints(), []int{0}, radii)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2, 2}, counts)

	counts, err = b.CountWithinRadius(context.Background(), linePoints(), []int{1}, radii)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 3, 1}, counts)

	counts, err = b.CountWithinRadius(context.Background(), linePoints(), nil, radii)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 4, 4}, counts)
}
