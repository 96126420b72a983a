package testkit

import (
	"testing"

	"gonum.org/v1/gonum/stat"

	"gocit/domain/core"
)

func TestProcessGenerator_Basic(t *testing.T) {
	config := DefaultProcessConfig()
	config.T = 500

	df, err := NewProcessGenerator(config).GenerateVAR()
	if err != nil {
		t.Fatalf("Failed to generate process: %v", err)
	}

	T, N := df.Dims()
	if T != 500 || N != 3 {
		t.Fatalf("Expected shape (500, 3), got (%d, %d)", T, N)
	}
}

func TestProcessGenerator_Deterministic(t *testing.T) {
	config := DefaultProcessConfig()
	config.T = 200

	a, err := NewProcessGenerator(config).GenerateVAR()
	if err != nil {
		t.Fatalf("Failed to generate process: %v", err)
	}
	b, err := NewProcessGenerator(config).GenerateVAR()
	if err != nil {
		t.Fatalf("Failed to generate process: %v", err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Expected identical series for identical seeds")
	}
}

func TestProcessGenerator_LaggedDependence(t *testing.T) {
	// Scenario: variable 1 is driven by variable 0 one step earlier
	config := DefaultProcessConfig()
	df, err := NewProcessGenerator(config).GenerateVAR()
	if err != nil {
		t.Fatalf("Failed to generate process: %v", err)
	}

	T, _ := df.Dims()
	x := make([]float64, T-1)
	y := make([]float64, T-1)
	for i := 0; i < T-1; i++ {
		x[i] = df.Values.At(i, 0)
		y[i] = df.Values.At(i+1, 1)
	}
	if r := stat.Correlation(x, y, nil); r < 0.3 {
		t.Errorf("Expected strong lagged correlation, got %.3f", r)
	}
}

func TestProcessGenerator_RejectsContemporaneousLinks(t *testing.T) {
	config := ProcessGeneratorConfig{
		T:     10,
		Links: map[int][]Link{0: {{Source: core.N(0, 0), Coeff: 0.5}}},
	}
	if _, err := NewProcessGenerator(config).GenerateVAR(); err == nil {
		t.Error("Expected error for zero-lag link")
	}
}

func TestProcessGenerator_Symbols(t *testing.T) {
	df := NewProcessGenerator(DefaultProcessConfig()).Symbols(100, 2, 4)
	for i := 0; i < 100; i++ {
		for j := 0; j < 2; j++ {
			v := df.Values.At(i, j)
			if v < 0 || v > 3 || v != float64(int(v)) {
				t.Fatalf("Unexpected symbol %v at (%d, %d)", v, i, j)
			}
		}
	}
}
