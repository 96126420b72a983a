package testkit

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"gocit/domain/core"
	"gocit/domain/dataset"
)

// Link is one parent term of a linear lagged process: Coeff * x[Source.Var](t + Source.Lag)
type Link struct {
	Source core.Node
	Coeff  float64
}

// ProcessGeneratorConfig configures the linear VAR process generator
type ProcessGeneratorConfig struct {
	T        int            `json:"t"`
	Burnin   int            `json:"burnin"`
	NoiseStd float64        `json:"noise_std"`
	Links    map[int][]Link `json:"links"` // parents per variable
	Seed     int64          `json:"seed"`
}

// DefaultProcessConfig returns a three variable chain 0 -> 1 -> 2 at lag one
func DefaultProcessConfig() ProcessGeneratorConfig {
	return ProcessGeneratorConfig{
		T:        1000,
		Burnin:   100,
		NoiseStd: 1.0,
		Links: map[int][]Link{
			0: {{Source: core.N(0, -1), Coeff: 0.3}},
			1: {{Source: core.N(1, -1), Coeff: 0.3}, {Source: core.N(0, -1), Coeff: 0.6}},
			2: {{Source: core.N(2, -1), Coeff: 0.3}, {Source: core.N(1, -1), Coeff: 0.6}},
		},
		Seed: 42,
	}
}

// ProcessGenerator generates seeded synthetic time series
type ProcessGenerator struct {
	config ProcessGeneratorConfig
	rng    *rand.Rand
}

// NewProcessGenerator creates a generator seeded from the config
func NewProcessGenerator(config ProcessGeneratorConfig) *ProcessGenerator {
	return &ProcessGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateVAR simulates the linear process defined by the configured links
func (g *ProcessGenerator) GenerateVAR() (*dataset.DataFrame, error) {
	n := len(g.config.Links)
	if n == 0 {
		return nil, fmt.Errorf("process needs at least one variable")
	}
	maxLag := 0
	for j := 0; j < n; j++ {
		links, ok := g.config.Links[j]
		if !ok {
			return nil, fmt.Errorf("variables must be numbered 0..%d, missing %d", n-1, j)
		}
		for _, l := range links {
			if l.Source.Lag >= 0 {
				return nil, fmt.Errorf("link %s -> %d must have negative lag", l.Source, j)
			}
			if l.Source.Var < 0 || l.Source.Var >= n {
				return nil, fmt.Errorf("link source %s out of range", l.Source)
			}
			if -l.Source.Lag > maxLag {
				maxLag = -l.Source.Lag
			}
		}
	}

	total := g.config.T + g.config.Burnin + maxLag
	x := mat.NewDense(total, n, nil)
	for t := 0; t < total; t++ {
		for j := 0; j < n; j++ {
			v := g.config.NoiseStd * g.rng.NormFloat64()
			if t >= maxLag {
				for _, l := range g.config.Links[j] {
					v += l.Coeff * x.At(t+l.Source.Lag, l.Source.Var)
				}
			}
			x.Set(t, j, v)
		}
	}

	start := total - g.config.T
	values := mat.DenseCopyOf(x.Slice(start, total, 0, n))
	return dataset.NewDataFrame(values, nil)
}

// Gaussian returns N independent standard normal series of length T
func (g *ProcessGenerator) Gaussian(T, N int) *dataset.DataFrame {
	values := mat.NewDense(T, N, nil)
	for t := 0; t < T; t++ {
		for j := 0; j < N; j++ {
			values.Set(t, j, g.rng.NormFloat64())
		}
	}
	return &dataset.DataFrame{Values: values}
}

// AR1 returns one autoregressive series x(t) = phi*x(t-1) + e(t)
func (g *ProcessGenerator) AR1(T int, phi float64) []float64 {
	series := make([]float64, T)
	prev := 0.0
	for t := -g.config.Burnin; t < T; t++ {
		prev = phi*prev + g.rng.NormFloat64()
		if t >= 0 {
			series[t] = prev
		}
	}
	return series
}

// Symbols returns N independent uniform symbol series over {0, ..., bins-1}
func (g *ProcessGenerator) Symbols(T, N, bins int) *dataset.DataFrame {
	values := mat.NewDense(T, N, nil)
	for t := 0; t < T; t++ {
		for j := 0; j < N; j++ {
			values.Set(t, j, float64(g.rng.Intn(bins)))
		}
	}
	return &dataset.DataFrame{Values: values}
}

// Rand exposes the generator's stream for ad hoc fixtures
func (g *ProcessGenerator) Rand() *rand.Rand {
	return g.rng
}
