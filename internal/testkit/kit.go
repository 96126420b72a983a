package testkit

import (
	"gonum.org/v1/gonum/mat"

	"gocit/adapters/rng"
	"gocit/domain/dataset"
	"gocit/ports"
)

// TestKit provides seeded fixtures shared by package tests
type TestKit struct {
	seed int64
	gen  *ProcessGenerator
}

// NewTestKit creates a test kit whose fixtures derive from seed
func NewTestKit(seed int64) *TestKit {
	config := DefaultProcessConfig()
	config.Seed = seed
	return &TestKit{seed: seed, gen: NewProcessGenerator(config)}
}

// RNGAdapter returns the seeded RNG adapter
func (k *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewSeededRNG()
}

// Generator exposes the underlying process generator
func (k *TestKit) Generator() *ProcessGenerator {
	return k.gen
}

// Chain returns T samples of the default three variable lagged chain
func (k *TestKit) Chain(T int) *dataset.DataFrame {
	config := DefaultProcessConfig()
	config.T = T
	config.Seed = k.seed
	df, err := NewProcessGenerator(config).GenerateVAR()
	if err != nil {
		panic(err)
	}
	return df
}

// Linear returns two columns x and y = slope*x with x standard normal
func (k *TestKit) Linear(T int, slope float64) *dataset.DataFrame {
	values := mat.NewDense(T, 2, nil)
	for t := 0; t < T; t++ {
		x := k.gen.rng.NormFloat64()
		values.Set(t, 0, x)
		values.Set(t, 1, slope*x)
	}
	return &dataset.DataFrame{Values: values}
}

// Sequence returns a (T, N) frame with value 100*v + t at row t, column v,
// so every aligned entry identifies its source position
func Sequence(T, N int) *dataset.DataFrame {
	values := mat.NewDense(T, N, nil)
	for t := 0; t < T; t++ {
		for v := 0; v < N; v++ {
			values.Set(t, v, float64(100*v+t))
		}
	}
	return &dataset.DataFrame{Values: values}
}
