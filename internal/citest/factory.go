package citest

import (
	"strings"

	"gocit/adapters/spatial"
	"gocit/adapters/stats/measures"
	"gocit/internal"
	"gocit/internal/errors"
	"gocit/ports"
)

// MeasureDeps carries the collaborators and settings of measures that need them
type MeasureDeps struct {
	// CMIknn
	KNN       int
	Transform measures.Transform
	Neighbors ports.NeighborCounter // brute force when nil
	RNG       ports.RNGPort         // jitter streams, seeded adapter when nil
	Seed      int64

	// GPACE
	Regressor ports.Regressor
	Solver    ports.MaxCorrSolver
	NullDists ports.NullDistTable

	Logger *internal.Logger
}

// defaultKNN is the neighbor count used when MeasureDeps.KNN is unset
const defaultKNN = 10

// NewMeasure returns the dependence measure registered under name
func NewMeasure(name string, deps MeasureDeps) (ports.DependenceMeasure, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "par_corr", "parcorr", "partial_correlation":
		return measures.NewParCorr(), nil

	case "cmi_symb", "cmisymb":
		return measures.NewCMISymb(), nil

	case "cmi_knn", "cmiknn":
		knn := deps.KNN
		if knn == 0 {
			knn = defaultKNN
		}
		counter := deps.Neighbors
		if counter == nil {
			counter = spatial.NewBruteForce()
		}
		m, err := measures.NewCMIKnn(knn, deps.Transform, counter, deps.RNG, deps.Seed)
		if err != nil {
			return nil, err
		}
		return m, nil

	case "gp_ace", "gpace":
		m, err := measures.NewGPACE(deps.Regressor, deps.Solver, deps.NullDists, deps.Logger)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, errors.InvalidConfig("dependence measure %q not known", name)
}
