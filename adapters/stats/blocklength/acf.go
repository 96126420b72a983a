package blocklength

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// ACF returns the autocorrelation function of series for lags 0..maxLag.
// Lag zero is 1 by definition; each other lag is the Pearson correlation
// between the series and its shifted copy.
func ACF(series []float64, maxLag int) []float64 {
	acf := make([]float64, maxLag+1)
	acf[0] = 1
	n := len(series)
	for lag := 1; lag <= maxLag && lag < n; lag++ {
		acf[lag] = stat.Correlation(series[lag:], series[:n-lag], nil)
	}
	return acf
}

// Envelope returns the magnitude of the analytic signal of x, computed by
// zeroing the negative frequencies of its discrete Fourier transform
func Envelope(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}

	seq := make([]complex128, n)
	for i, v := range x {
		seq[i] = complex(v, 0)
	}
	fft := fourier.NewCmplxFFT(n)
	coeff := fft.Coefficients(nil, seq)

	// h doubles positive frequencies and keeps DC and Nyquist
	h := make([]float64, n)
	h[0] = 1
	if n%2 == 0 {
		h[n/2] = 1
		for i := 1; i < n/2; i++ {
			h[i] = 2
		}
	} else {
		for i := 1; i <= (n-1)/2; i++ {
			h[i] = 2
		}
	}
	for i := range coeff {
		coeff[i] *= complex(h[i], 0)
	}

	analytic := fft.Sequence(nil, coeff)
	env := make([]float64, n)
	scale := float64(n)
	for i, c := range analytic {
		env[i] = cmplx.Abs(c) / scale
	}
	return env
}
