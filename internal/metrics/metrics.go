package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for one test runner.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	TestsTotal          *prometheus.CounterVec   // Tests run, by measure and significance
	CacheHitsTotal      prometheus.Counter       // Residual cache hits
	CacheMissesTotal    prometheus.Counter       // Residual cache misses
	FitFallbacksTotal   prometheus.Counter       // Block-length curve fits that fell back to 5% of T
	ResampleDurationSec *prometheus.HistogramVec // Wall time of full shuffle or bootstrap runs
}

// NewMetrics creates and registers the runner metrics.
// The instanceName parameter enables multi-instance metric tracking via ConstLabels.
func NewMetrics(reg prometheus.Registerer, instanceName string) *Metrics {
	constLabels := prometheus.Labels{"instance": instanceName}

	testsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "cit_tests_total",
		Help:        "Total number of conditional independence tests run",
		ConstLabels: constLabels,
	}, []string{"measure", "significance"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "cit_residual_cache_hits_total",
		Help:        "Total number of residual cache hits",
		ConstLabels: constLabels,
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "cit_residual_cache_misses_total",
		Help:        "Total number of residual cache misses",
		ConstLabels: constLabels,
	})

	fitFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "cit_blocklength_fit_fallbacks_total",
		Help:        "Total number of autocorrelation decay fits that failed and used the fallback block length",
		ConstLabels: constLabels,
	})

	resampleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "cit_resample_duration_seconds",
		Help:        "Duration of shuffle and bootstrap resampling runs",
		ConstLabels: constLabels,
		Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"kind"})

	reg.MustRegister(testsTotal, cacheHits, cacheMisses, fitFallbacks, resampleDuration)

	return &Metrics{
		TestsTotal:          testsTotal,
		CacheHitsTotal:      cacheHits,
		CacheMissesTotal:    cacheMisses,
		FitFallbacksTotal:   fitFallbacks,
		ResampleDurationSec: resampleDuration,
	}
}

// ObserveTest counts one finished test
func (m *Metrics) ObserveTest(measure, significance string) {
	if m == nil {
		return
	}
	m.TestsTotal.WithLabelValues(measure, significance).Inc()
}

// CacheHit counts a residual served from the cache
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// CacheMiss counts a residual that had to be computed
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// FitFallback counts a failed decay fit
func (m *Metrics) FitFallback() {
	if m == nil {
		return
	}
	m.FitFallbacksTotal.Inc()
}

// ObserveResample records how long a resampling run took
func (m *Metrics) ObserveResample(kind string, started time.Time) {
	if m == nil {
		return
	}
	m.ResampleDurationSec.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}
