package citest

import (
	"context"

	"gocit/adapters/stats/measures"
	"gocit/adapters/stats/temporal"
	"gocit/internal/config"
	"gocit/internal/errors"
	"gocit/ports"
)

// significance turns value into a p-value. Resampled null distributions are
// summarized on rec.
func (r *Runner) significance(ctx context.Context, aligned *temporal.Aligned, tauMax int, value float64, rec *Record) (float64, error) {
	switch r.cfg.Significance {
	case config.SignificanceAnalytic:
		analytic, ok := r.measure.(ports.AnalyticSignificance)
		if !ok {
			return 0, errors.Unsupported("analytic significance", r.measure.Name())
		}
		dim, T := aligned.Array.Dims()
		return analytic.AnalyticPValue(value, T-dim)

	case config.SignificanceShuffle:
		arr := aligned.Array
		if r.measure.ResidualBased() {
			pair, err := r.residualPair(ctx, aligned)
			if err != nil {
				return 0, err
			}
			arr = pair
		}
		stream, err := r.stream(ctx, "shuffle", aligned, tauMax)
		if err != nil {
			return 0, err
		}
		null, err := r.resampler.ShuffleDistribution(ctx, arr, r.measureFunc(), r.cfg.SigSamples, r.cfg.SigBlockLength, stream)
		if err != nil {
			return 0, errors.Wrap(err, "shuffle test failed")
		}
		rec.Null = summarize("shuffle", null)
		return measures.ShufflePValue(null, value, r.measure.TwoSided()), nil

	case config.SignificanceFixedThres:
		return measures.FixedThresPValue(value, r.cfg.FixedThres), nil
	}
	return 0, errors.InvalidConfig("significance %q not known", r.cfg.Significance)
}

// confidence returns the interval around value. A bootstrap distribution is
// summarized into *null.
func (r *Runner) confidence(ctx context.Context, aligned *temporal.Aligned, tauMax int, value float64, null **NullSummary) (float64, float64, error) {
	switch r.cfg.Confidence {
	case config.ConfidenceAnalytic:
		analytic, ok := r.measure.(ports.AnalyticConfidence)
		if !ok {
			return 0, 0, errors.Unsupported("analytic confidence", r.measure.Name())
		}
		dim, T := aligned.Array.Dims()
		return analytic.AnalyticInterval(value, T-dim, r.cfg.ConfLev)

	case config.ConfidenceBootstrap:
		stream, err := r.stream(ctx, "bootstrap", aligned, tauMax)
		if err != nil {
			return 0, 0, err
		}
		dist, err := r.resampler.BootstrapDistribution(ctx, aligned.Array, r.measureFunc(), r.cfg.ConfSamples, r.cfg.ConfBlockLength, stream)
		if err != nil {
			return 0, 0, errors.Wrap(err, "bootstrap failed")
		}
		*null = summarize("bootstrap", dist)
		lower, upper := measures.Quantiles(dist, r.cfg.ConfLev)
		return lower, upper, nil
	}
	return 0, 0, errors.InvalidConfig("%s confidence estimation not implemented", r.cfg.Confidence)
}
