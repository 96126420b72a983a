package citest

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"sync"

	"gocit/adapters/rng"
	"gocit/adapters/stats/blocklength"
	"gocit/adapters/stats/resampling"
	"gocit/adapters/stats/temporal"
	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal"
	"gocit/internal/config"
	"gocit/internal/errors"
	"gocit/internal/metrics"
	"gocit/ports"
)

// Runner evaluates conditional independence tests I(X;Y|Z) on one data set
// with one dependence measure. It is safe for concurrent use.
type Runner struct {
	id       core.RunnerID
	cfg      config.TestConfig
	measure  ports.DependenceMeasure
	maskType core.MaskType

	builder   *temporal.Builder
	resampler *resampling.Resampler
	rng       ports.RNGPort
	cache     *ResidualCache // nil unless residuals are recycled
	logger    *internal.Logger
	metrics   *metrics.Metrics

	mu   sync.RWMutex
	data *dataset.DataFrame
	last *Record
}

// Option customizes a Runner
type Option func(*Runner)

// WithLogger sets the logger; the default logger is used otherwise
func WithLogger(logger *internal.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics records test, cache and resampling metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithRNG replaces the seeded stream source
func WithRNG(source ports.RNGPort) Option {
	return func(r *Runner) { r.rng = source }
}

// NewRunner validates cfg and wires a runner around measure
func NewRunner(cfg config.TestConfig, measure ports.DependenceMeasure, opts ...Option) (*Runner, error) {
	if measure == nil {
		return nil, errors.InvalidConfig("no dependence measure given")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		id:      core.NewRunnerID(),
		cfg:     cfg,
		measure: measure,
		logger:  internal.DefaultLogger,
		rng:     rng.NewSeededRNG(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = internal.DefaultLogger
	}
	if r.rng == nil {
		r.rng = rng.NewSeededRNG()
	}
	r.logger = r.logger.WithPrefix(measure.Name())

	if cfg.UseMask {
		mt, err := core.ParseMaskType(cfg.MaskType)
		if err != nil {
			return nil, err
		}
		r.maskType = mt
	}

	r.builder = temporal.NewBuilder(r.logger)
	r.resampler = resampling.NewResampler(blocklength.NewEstimator(r.logger, r.metrics), cfg.Workers, r.logger, r.metrics)

	if cfg.RecycleResiduals && measure.ResidualBased() {
		if cfg.UseMask {
			r.logger.Info("residual recycling is disabled when masking is used")
		} else {
			cache, err := NewResidualCache(cfg.ResidualCacheSize, r.metrics)
			if err != nil {
				return nil, err
			}
			r.cache = cache
		}
	}

	if d, ok := measure.(ports.Discrete); ok && d.Discrete() {
		autoSig := cfg.Significance == config.SignificanceShuffle && cfg.SigBlockLength == 0
		autoConf := cfg.Confidence == config.ConfidenceBootstrap && cfg.ConfBlockLength == 0
		if autoSig || autoConf {
			r.logger.Warn("automatic block-length estimation from autocorrelation decay is questionable for discrete data")
		}
	}

	r.logger.Debug("runner %s: significance = %s, confidence = %s, recycle residuals = %t",
		r.id, cfg.Significance, cfg.Confidence, r.cache != nil)
	return r, nil
}

// ID returns the runner's instance identifier
func (r *Runner) ID() core.RunnerID {
	return r.id
}

// Measure returns the dependence measure the runner was built with
func (r *Runner) Measure() ports.DependenceMeasure {
	return r.measure
}

// SetData installs the (T, N) data set every later test is computed from.
// Cached residuals of a previous data set are dropped.
func (r *Runner) SetData(df *dataset.DataFrame) error {
	if df == nil || df.Values == nil {
		return errors.InvalidSpec("no data set")
	}
	if r.cfg.UseMask && df.Mask == nil {
		return errors.InvalidConfig("use_mask is set but the data has no mask")
	}

	r.mu.Lock()
	r.data = df
	r.last = nil
	r.mu.Unlock()

	if r.cache != nil {
		r.cache.Purge()
	}
	T, N := df.Dims()
	r.logger.Debug("data set %s with T = %d, N = %d", df.Fingerprint().Short(), T, N)
	return nil
}

// ClearCache drops every recycled residual
func (r *Runner) ClearCache() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// LastResult returns a copy of the last computed record, or nil before the first test
func (r *Runner) LastResult() *Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return nil
	}
	rec := *r.last
	return &rec
}

// RunTest computes the statistic of I(X;Y|Z) and its p-value under the
// configured significance strategy
func (r *Runner) RunTest(ctx context.Context, x, y, z core.NodeSet, tauMax int) (float64, float64, error) {
	aligned, err := r.align(x, y, z, tauMax)
	if err != nil {
		return 0, 0, err
	}
	value, err := r.statistic(ctx, aligned)
	if err != nil {
		return 0, 0, err
	}

	rec := r.newRecord(aligned, tauMax, value)
	pval, err := r.significance(ctx, aligned, tauMax, value, rec)
	if err != nil {
		return 0, 0, err
	}
	rec.PValue = pval

	r.store(rec)
	r.metrics.ObserveTest(r.measure.Name(), string(r.cfg.Significance))
	r.logger.Debug("X = %s, Y = %s, Z = %s: %s", aligned.X, aligned.Y, aligned.Z, rec)
	return value, pval, nil
}

// GetMeasure computes only the statistic of I(X;Y|Z)
func (r *Runner) GetMeasure(ctx context.Context, x, y, z core.NodeSet, tauMax int) (float64, error) {
	aligned, err := r.align(x, y, z, tauMax)
	if err != nil {
		return 0, err
	}
	value, err := r.statistic(ctx, aligned)
	if err != nil {
		return 0, err
	}
	r.store(r.newRecord(aligned, tauMax, value))
	return value, nil
}

// GetConfidence returns the confidence interval of the statistic of
// I(X;Y|Z), or (NaN, NaN) when confidence estimation is disabled. The
// interval is attached to the last record when it describes the same test.
func (r *Runner) GetConfidence(ctx context.Context, x, y, z core.NodeSet, tauMax int) (float64, float64, error) {
	if err := r.cfg.ValidateConfidence(); err != nil {
		return 0, 0, err
	}
	if r.cfg.Confidence == config.ConfidenceNone {
		return math.NaN(), math.NaN(), nil
	}

	aligned, err := r.align(x, y, z, tauMax)
	if err != nil {
		return 0, 0, err
	}
	value, err := r.measure.Estimate(ctx, aligned.Array)
	if err != nil {
		return 0, 0, err
	}

	var null *NullSummary
	lower, upper, err := r.confidence(ctx, aligned, tauMax, value, &null)
	if err != nil {
		return 0, 0, err
	}

	r.mu.Lock()
	key := testKey(aligned.X, aligned.Y, aligned.Z, tauMax)
	if r.last == nil || testKey(r.last.X, r.last.Y, r.last.Z, r.last.TauMax) != key {
		_, T := aligned.Array.Dims()
		r.last = newRecord(r.id, aligned.X, aligned.Y, aligned.Z, tauMax, T, value)
	}
	r.last.Lower, r.last.Upper = lower, upper
	if null != nil {
		r.last.Null = null
	}
	r.mu.Unlock()

	return lower, upper, nil
}

// GetModelSelectionCriterion scores how well parents explain variable j at
// lag zero. Lower is better.
func (r *Runner) GetModelSelectionCriterion(ctx context.Context, j int, parents core.NodeSet, tauMax int) (float64, error) {
	selector, ok := r.measure.(ports.ModelSelector)
	if !ok {
		return 0, errors.Unsupported("model selection", r.measure.Name())
	}
	target := core.NodeSet{core.N(j, 0)}
	aligned, err := r.align(target, target, parents, tauMax)
	if err != nil {
		return 0, err
	}
	return selector.ModelScore(ctx, aligned.Array)
}

// align builds the sample array and rejects arrays containing NaN
func (r *Runner) align(x, y, z core.NodeSet, tauMax int) (*temporal.Aligned, error) {
	r.mu.RLock()
	df := r.data
	r.mu.RUnlock()
	if df == nil {
		return nil, errors.InvalidConfig("no data set, call SetData first")
	}

	aligned, err := r.builder.Build(df, temporal.Spec{X: x, Y: y, Z: z, TauMax: tauMax},
		temporal.Options{UseMask: r.cfg.UseMask, MaskType: r.maskType})
	if err != nil {
		return nil, err
	}
	if aligned.Array.HasNaN() {
		return nil, errors.DataQuality("nans in the array")
	}
	return aligned, nil
}

// statistic evaluates the measure, on recycled residuals when caching is active
func (r *Runner) statistic(ctx context.Context, aligned *temporal.Aligned) (float64, error) {
	if r.cache == nil {
		return r.measure.Estimate(ctx, aligned.Array)
	}
	pair, err := r.residualPair(ctx, aligned)
	if err != nil {
		return 0, err
	}
	return r.measure.Estimate(ctx, pair)
}

// residualPair returns the 2-row array of X and Y residuals on Z. Residuals
// with a non-empty Z go through the cache when one is configured.
func (r *Runner) residualPair(ctx context.Context, aligned *temporal.Aligned) (*dataset.Array, error) {
	residualizer, ok := r.measure.(ports.Residualizer)
	if !ok {
		return nil, errors.Newf(errors.CodeInternalError, "%s is residual based but cannot compute residuals", r.measure.Name())
	}

	get := func(target int, nodes core.NodeSet) ([]float64, error) {
		compute := func() ([]float64, error) { return residualizer.Residuals(ctx, aligned.Array, target) }
		if r.cache == nil || len(aligned.Z) == 0 {
			return compute()
		}
		return r.cache.Get(residualKey(nodes, aligned), compute)
	}

	x, err := get(0, aligned.X)
	if err != nil {
		return nil, err
	}
	y, err := get(1, aligned.Y)
	if err != nil {
		return nil, err
	}
	return dataset.ResidualPair(x, y), nil
}

// residualKey also carries the max lag, which fixes the aligned sample range
func residualKey(target core.NodeSet, aligned *temporal.Aligned) string {
	return core.ResidualKey(target, aligned.Z) + "@" + strconv.Itoa(aligned.MaxLag)
}

func (r *Runner) newRecord(aligned *temporal.Aligned, tauMax int, value float64) *Record {
	_, T := aligned.Array.Dims()
	return newRecord(r.id, aligned.X, aligned.Y, aligned.Z, tauMax, T, value)
}

func (r *Runner) store(rec *Record) {
	r.mu.Lock()
	r.last = rec
	r.mu.Unlock()
}

// stream returns the random stream of one resampling kind for one test
func (r *Runner) stream(ctx context.Context, kind string, aligned *temporal.Aligned, tauMax int) (*rand.Rand, error) {
	return r.rng.Stream(ctx, kind, testKey(aligned.X, aligned.Y, aligned.Z, tauMax), r.cfg.Seed)
}

// measureFunc adapts the measure for the resampler
func (r *Runner) measureFunc() resampling.MeasureFunc {
	return r.measure.Estimate
}
