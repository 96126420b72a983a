package citest

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocit/domain/core"
	"gocit/internal/errors"
)

func TestResidualCacheComputesOncePerKey(t *testing.T) {
	cache, err := NewResidualCache(8, nil)
	require.NoError(t, err)

	var calls int32
	compute := func() ([]float64, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return []float64{1, 2, 3}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resid, err := cache.Get("k", compute)
			assert.NoError(t, err)
			assert.Equal(t, []float64{1, 2, 3}, resid)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, cache.Len())
}

func TestResidualCacheDoesNotStoreErrors(t *testing.T) {
	cache, err := NewResidualCache(2, nil)
	require.NoError(t, err)

	_, err = cache.Get("k", func() ([]float64, error) { return nil, errors.DataQuality("constant row") })
	assert.True(t, errors.IsDataQuality(err))
	assert.Equal(t, 0, cache.Len())
}

func TestResidualCacheEvicts(t *testing.T) {
	cache, err := NewResidualCache(2, nil)
	require.NoError(t, err)
	for _, k := range []string{"a", "b", "c"} {
		_, err := cache.Get(k, func() ([]float64, error) { return []float64{0}, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}

func TestResidualCacheRejectsBadSize(t *testing.T) {
	_, err := NewResidualCache(0, nil)
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestRecordString(t *testing.T) {
	rec := newRecord(core.NewRunnerID(), nil, nil, nil, 0, 10, 0.5)
	assert.Equal(t, "val = 0.500", rec.String())

	rec.PValue = 0.01
	assert.Equal(t, "pval = 0.01000 | val = 0.500", rec.String())

	rec.Lower, rec.Upper = 0.4, 0.6
	assert.Equal(t, "pval = 0.01000 | val = 0.500 | conf bounds = (0.400, 0.600)", rec.String())
}

func TestSummarize(t *testing.T) {
	dist := make([]float64, 100)
	for i := range dist {
		dist[i] = float64(i + 1)
	}
	s := summarize("shuffle", dist)
	assert.Equal(t, 100, s.Samples)
	assert.InDelta(t, 50.5, s.Mean, 1e-12)
	assert.Greater(t, s.P99, s.P95)
	assert.False(t, math.IsNaN(s.Std))
}
