package nulldist

import (
	"context"
	"math/rand"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"gocit/internal/errors"
	"gocit/ports"
)

// Table is an in-memory set of null distributions keyed by sample size.
// Sizes are kept in ascending order.
type Table struct {
	sizes []int
	dists [][]float64
}

// NewTable validates and stores the distributions. dists[i] belongs to sizes[i].
func NewTable(sizes []int, dists [][]float64) (*Table, error) {
	if len(sizes) != len(dists) {
		return nil, errors.InvalidConfig("got %d sample sizes but %d distributions", len(sizes), len(dists))
	}

	idx := make([]int, len(sizes))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return sizes[idx[a]] < sizes[idx[b]] })

	t := &Table{sizes: make([]int, len(sizes)), dists: make([][]float64, len(sizes))}
	for k, i := range idx {
		if sizes[i] < 1 {
			return nil, errors.InvalidConfig("sample size %d must be positive", sizes[i])
		}
		if k > 0 && sizes[i] == t.sizes[k-1] {
			return nil, errors.InvalidConfig("duplicate sample size %d", sizes[i])
		}
		if len(dists[i]) == 0 {
			return nil, errors.InvalidConfig("null distribution for sample size %d is empty", sizes[i])
		}
		t.sizes[k] = sizes[i]
		d := append([]float64(nil), dists[i]...)
		sort.Float64s(d)
		t.dists[k] = d
	}
	return t, nil
}

// SampleSizes returns the tabulated sample sizes in ascending order
func (t *Table) SampleSizes() []int {
	return t.sizes
}

// Distribution returns the sorted null distribution at index i of SampleSizes
func (t *Table) Distribution(i int) []float64 {
	if i < 0 || i >= len(t.dists) {
		return nil
	}
	return t.dists[i]
}

// file layout of a stored table
type tableFile struct {
	SampleSizes   []int       `yaml:"sample_sizes"`
	Distributions [][]float64 `yaml:"distributions"`
}

// LoadFile reads a table stored as YAML with keys sample_sizes and distributions
func LoadFile(path string) (*Table, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(errors.InvalidConfig("cannot read %q", path), "failed to load null distributions: %v", err)
	}
	var tf tableFile
	if err := k.UnmarshalWithConf("", &tf, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, errors.Wrapf(errors.InvalidConfig("cannot parse %q", path), "failed to parse null distributions: %v", err)
	}
	return NewTable(tf.SampleSizes, tf.Distributions)
}

// Generate tabulates the maximal correlation of independent uniform-marginal
// series for every sample size. Both series are random permutations of
// {1/n, 2/n, ..., 1}, which is what rank-transformed independent residuals look like.
func Generate(ctx context.Context, solver ports.MaxCorrSolver, sizes []int, samples int, rng *rand.Rand) (*Table, error) {
	if samples < 1 {
		return nil, errors.InvalidConfig("samples = %d, must be positive", samples)
	}
	dists := make([][]float64, len(sizes))
	for i, n := range sizes {
		if n < 1 {
			return nil, errors.InvalidConfig("sample size %d must be positive", n)
		}
		dists[i] = make([]float64, samples)
		for s := 0; s < samples; s++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v, err := solver.Solve(ctx, uniformPermutation(n, rng), uniformPermutation(n, rng))
			if err != nil {
				return nil, errors.Wrapf(err, "null sample %d for size %d failed", s, n)
			}
			dists[i][s] = v
		}
	}
	return NewTable(sizes, dists)
}

func uniformPermutation(n int, rng *rand.Rand) []float64 {
	out := make([]float64, n)
	for i, p := range rng.Perm(n) {
		out[i] = float64(p+1) / float64(n)
	}
	return out
}
