package resampling

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"gocit/adapters/stats/blocklength"
	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal"
	"gocit/internal/errors"
	"gocit/internal/metrics"
)

// Resampler builds null and bootstrap distributions by block resampling.
// Random plans are drawn sequentially from the caller's stream, then the
// statistic is evaluated on up to workers goroutines.
type Resampler struct {
	estimator *blocklength.Estimator
	workers   int
	logger    *internal.Logger
	metrics   *metrics.Metrics
}

// NewResampler creates a Resampler; logger and metrics may be nil
func NewResampler(estimator *blocklength.Estimator, workers int, logger *internal.Logger, m *metrics.Metrics) *Resampler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if estimator == nil {
		estimator = blocklength.NewEstimator(logger, m)
	}
	if workers < 1 {
		workers = 1
	}
	return &Resampler{estimator: estimator, workers: workers, logger: logger, metrics: m}
}

// shufflePlan is one block permutation of the X rows
type shufflePlan struct {
	starts   []int // source column of each output block
	insertAt int   // output column where the tail goes
}

// ShuffleDistribution returns the sorted statistics of numSamples arrays whose
// X rows were block-shuffled. Y and Z rows are left untouched. A blockLen of
// zero estimates the block length from the X rows.
func (r *Resampler) ShuffleDistribution(ctx context.Context, arr *dataset.Array, fn MeasureFunc, numSamples, blockLen int, rng *rand.Rand) ([]float64, error) {
	defer r.metrics.ObserveResample("shuffle", time.Now())

	_, T := arr.Dims()
	if blockLen == 0 {
		blockLen = r.estimator.Estimate(arr, blocklength.ModeSignificance)
	}
	if err := checkBlockLength(blockLen, T); err != nil {
		return nil, err
	}
	if numSamples < 1 {
		return nil, errors.InvalidConfig("sig_samples = %d, must be positive", numSamples)
	}
	r.logger.Debug("significance test with block-length = %d", blockLen)

	xRows := arr.Indices(core.RoleX)
	nBlocks := T / blockLen
	blockStarts := make([]int, nBlocks)
	for k := range blockStarts {
		blockStarts[k] = k * blockLen
	}
	tailLen := T - nBlocks*blockLen

	plans := make([]shufflePlan, numSamples)
	for s := range plans {
		perm := rng.Perm(nBlocks)
		starts := make([]int, nBlocks)
		for k, p := range perm {
			starts[k] = blockStarts[p]
		}
		plans[s] = shufflePlan{starts: starts}
		if tailLen > 0 {
			plans[s].insertAt = blockStarts[rng.Intn(nBlocks)]
		}
	}

	build := func(s int) *dataset.Array {
		out := arr.Clone()
		for _, i := range xRows {
			shuffleRow(out.Row(i), arr.Row(i), plans[s], blockLen, tailLen)
		}
		return out
	}

	dist, err := evaluate(ctx, r.workers, numSamples, build, fn)
	if err != nil {
		return nil, err
	}
	sort.Float64s(dist)
	return dist, nil
}

// shuffleRow writes the permuted blocks of src into dst, with the leftover
// tail of src inserted before output column plan.insertAt
func shuffleRow(dst, src []float64, plan shufflePlan, blockLen, tailLen int) {
	body := len(plan.starts) * blockLen
	shuffled := make([]float64, 0, body)
	for _, start := range plan.starts {
		shuffled = append(shuffled, src[start:start+blockLen]...)
	}
	if tailLen == 0 {
		copy(dst, shuffled)
		return
	}
	tail := src[body:]
	n := copy(dst, shuffled[:plan.insertAt])
	n += copy(dst[n:], tail)
	copy(dst[n:], shuffled[plan.insertAt:])
}

// BootstrapDistribution returns the sorted statistics of numSamples block
// bootstrap arrays. All rows share the same block starts so columns stay
// contemporaneous. A blockLen of zero estimates the block length from all rows.
func (r *Resampler) BootstrapDistribution(ctx context.Context, arr *dataset.Array, fn MeasureFunc, numSamples, blockLen int, rng *rand.Rand) ([]float64, error) {
	defer r.metrics.ObserveResample("bootstrap", time.Now())

	dim, T := arr.Dims()
	if blockLen == 0 {
		blockLen = r.estimator.Estimate(arr, blocklength.ModeConfidence)
	}
	if err := checkBlockLength(blockLen, T); err != nil {
		return nil, err
	}
	if numSamples < 1 {
		return nil, errors.InvalidConfig("conf_samples = %d, must be positive", numSamples)
	}
	r.logger.Debug("block bootstrap confidence intervals with block-length = %d", blockLen)

	nBlocks := int(math.Ceil(float64(T) / float64(blockLen)))
	plans := make([][]int, numSamples)
	for s := range plans {
		starts := make([]int, nBlocks)
		for k := range starts {
			starts[k] = rng.Intn(T - blockLen + 1)
		}
		plans[s] = starts
	}

	build := func(s int) *dataset.Array {
		out := arr.Clone()
		for i := 0; i < dim; i++ {
			bootstrapRow(out.Row(i), arr.Row(i), plans[s], blockLen)
		}
		return out
	}

	dist, err := evaluate(ctx, r.workers, numSamples, build, fn)
	if err != nil {
		return nil, err
	}
	sort.Float64s(dist)
	return dist, nil
}

// bootstrapRow concatenates the blocks of src starting at starts, truncated to len(dst)
func bootstrapRow(dst, src []float64, starts []int, blockLen int) {
	n := 0
	for _, start := range starts {
		if n >= len(dst) {
			break
		}
		n += copy(dst[n:], src[start:start+blockLen])
	}
}

func checkBlockLength(blockLen, T int) error {
	if blockLen < 1 || blockLen > T {
		return errors.InvalidConfig("block length %d must be in [1, %d]", blockLen, T)
	}
	return nil
}
