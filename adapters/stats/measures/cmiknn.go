package measures

import (
	"context"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"

	"gocit/adapters/rng"
	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal/errors"
	"gocit/ports"
)

// Transform is applied to every row before the neighbor search
type Transform string

const (
	TransformStandardize Transform = "standardize"
	TransformUniform     Transform = "uniform"
	TransformNone        Transform = "none"
)

// jitterScale times the row standard deviation bounds the tie-breaking noise
const jitterScale = 1e-6

// CMIKnn is the Frenzel-Pompe nearest-neighbor estimator of conditional
// mutual information for continuous data
type CMIKnn struct {
	knn       int
	transform Transform
	counter   ports.NeighborCounter
	rng       ports.RNGPort
	seed      int64
}

// NewCMIKnn creates the estimator with knn neighbors in the joint space.
// Jitter streams come from rng, the seeded adapter when nil.
func NewCMIKnn(knn int, transform Transform, counter ports.NeighborCounter, rngPort ports.RNGPort, seed int64) (*CMIKnn, error) {
	if knn < 1 {
		return nil, errors.InvalidConfig("knn = %d, must be positive", knn)
	}
	switch transform {
	case TransformStandardize, TransformUniform, TransformNone:
	case "":
		transform = TransformStandardize
	default:
		return nil, errors.InvalidConfig("transform = %q, must be standardize, uniform or none", transform)
	}
	if counter == nil {
		return nil, errors.InvalidConfig("CMIknn needs a neighbor counter")
	}
	if rngPort == nil {
		rngPort = rng.NewSeededRNG()
	}
	return &CMIKnn{
		knn:       knn,
		transform: transform,
		counter:   counter,
		rng:       rngPort,
		seed:      seed,
	}, nil
}

func (c *CMIKnn) Name() string        { return "cmi_knn" }
func (c *CMIKnn) TwoSided() bool      { return false }
func (c *CMIKnn) ResidualBased() bool { return false }

// Estimate returns psi(k) - mean(psi(k_xz) + psi(k_yz) - psi(k_z))
func (c *CMIKnn) Estimate(ctx context.Context, arr *dataset.Array) (float64, error) {
	kxz, kyz, kz, err := c.neighborCounts(ctx, arr)
	if err != nil {
		return 0, err
	}
	var s float64
	for t := range kxz {
		s += mathext.Digamma(float64(kxz[t])) + mathext.Digamma(float64(kyz[t])) - mathext.Digamma(float64(kz[t]))
	}
	return mathext.Digamma(float64(c.knn)) - s/float64(len(kxz)), nil
}

// neighborCounts returns, per sample, the number of samples within the
// joint-space k-th neighbor distance in the XZ, YZ and Z subspaces
func (c *CMIKnn) neighborCounts(ctx context.Context, arr *dataset.Array) ([]int, []int, []int, error) {
	dim, T := arr.Dims()
	if T <= c.knn {
		return nil, nil, nil, errors.InvalidConfig("knn = %d needs more than %d samples", c.knn, T)
	}

	var values *mat.Dense
	switch c.transform {
	case TransformStandardize:
		std, err := standardize(arr.Values)
		if err != nil {
			return nil, nil, nil, err
		}
		values = std
	case TransformUniform:
		values = uniformRows(arr.Values)
	default:
		values = mat.DenseCopyOf(arr.Values)
	}
	if err := c.jitter(ctx, values); err != nil {
		return nil, nil, nil, err
	}

	points := mat.DenseCopyOf(values.T())
	eps, err := c.counter.KthNearestDistance(ctx, points, c.knn)
	if err != nil {
		return nil, nil, nil, err
	}

	var xz, yz, z []int
	for i := 0; i < dim; i++ {
		switch arr.Roles[i] {
		case core.RoleX:
			xz = append(xz, i)
		case core.RoleY:
			yz = append(yz, i)
		default:
			xz = append(xz, i)
			yz = append(yz, i)
			z = append(z, i)
		}
	}

	kxz, err := c.counter.CountWithinRadius(ctx, points, xz, eps)
	if err != nil {
		return nil, nil, nil, err
	}
	kyz, err := c.counter.CountWithinRadius(ctx, points, yz, eps)
	if err != nil {
		return nil, nil, nil, err
	}
	kz, err := c.counter.CountWithinRadius(ctx, points, z, eps)
	if err != nil {
		return nil, nil, nil, err
	}
	return kxz, kyz, kz, nil
}

// jitter adds uniform noise scaled by each row's spread to break ties.
// The stream is named after the values, so equal arrays get equal noise
// whatever order they are evaluated in.
func (c *CMIKnn) jitter(ctx context.Context, values *mat.Dense) error {
	dim, T := values.Dims()
	fingerprint := core.HashFloats(dim, T, mat.DenseCopyOf(values).RawMatrix().Data)
	stream, err := c.rng.SeededStream(ctx, "cmi_knn_jitter:"+fingerprint.String(), c.seed)
	if err != nil {
		return errors.Wrap(err, "jitter stream")
	}
	for i := 0; i < dim; i++ {
		row := values.RawRowView(i)
		_, std := stat.PopMeanStdDev(row, nil)
		for j := range row {
			row[j] += jitterScale * std * stream.Float64()
		}
	}
	return nil
}
