package nulldist

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gocit/internal/errors"
)

type mockSolver struct {
	mock.Mock
}

func (m *mockSolver) Solve(ctx context.Context, x, y []float64) (float64, error) {
	args := m.Called(ctx, x, y)
	return args.Get(0).(float64), args.Error(1)
}

func TestNewTableSortsBySize(t *testing.T) {
	table, err := NewTable([]int{200, 100}, [][]float64{{0.3, 0.1}, {0.9, 0.5, 0.7}})
	require.NoError(t, err)

	assert.Equal(t, []int{100, 200}, table.SampleSizes())
	assert.Equal(t, []float64{0.5, 0.7, 0.9}, table.Distribution(0))
	assert.Equal(t, []float64{0.1, 0.3}, table.Distribution(1))
	assert.Nil(t, table.Distribution(2))
}

func TestNewTableValidation(t *testing.T) {
	cases := map[string]struct {
		sizes []int
		dists [][]float64
	}{
		"length mismatch": {[]int{100}, nil},
		"duplicate size":  {[]int{100, 100}, [][]float64{{1}, {2}}},
		"empty dist":      {[]int{100}, [][]float64{{}}},
		"zero size":       {[]int{0}, [][]float64{{1}}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTable(tc.sizes, tc.dists)
			assert.True(t, errors.IsInvalidConfig(err))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "null.yaml")
	content := "sample_sizes: [50, 25]\ndistributions:\n  - [0.4, 0.2]\n  - [0.6]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int{25, 50}, table.SampleSizes())
	assert.Equal(t, []float64{0.2, 0.4}, table.Distribution(1))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestGenerateUsesUniformPermutations(t *testing.T) {
	solver := &mockSolver{}
	solver.On("Solve", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			x := append([]float64(nil), args.Get(1).([]float64)...)
			sort.Float64s(x)
			for i, v := range x {
				assert.InDelta(t, float64(i+1)/float64(len(x)), v, 1e-12)
			}
		}).
		Return(0.25, nil)

	table, err := Generate(context.Background(), solver, []int{10, 20}, 3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, table.SampleSizes())
	assert.Equal(t, []float64{0.25, 0.25, 0.25}, table.Distribution(1))
	solver.AssertNumberOfCalls(t, "Solve", 6)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate(context.Background(), &mockSolver{}, []int{10}, 0, rand.New(rand.NewSource(1)))
	assert.True(t, errors.IsInvalidConfig(err))
}
