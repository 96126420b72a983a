package blocklength

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"gocit/internal/errors"
)

// DecayFit holds the parameters of y = Amplitude * Decay^x
type DecayFit struct {
	Amplitude float64
	Decay     float64
}

// FitDecay fits y = a * decay^x at x = 0, 1, ..., len(y)-1 by least squares.
// Failures are reported as NumericalFitFailure.
func FitDecay(y []float64) (DecayFit, error) {
	if len(y) < 2 {
		return DecayFit{}, errors.NumericalFitFailure("need at least two points to fit an exponential decay")
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return DecayFit{}, errors.NumericalFitFailure("non-finite values in autocorrelation envelope")
		}
	}

	sse := func(p []float64) float64 {
		a, d := p[0], p[1]
		var s float64
		for x, yx := range y {
			r := a*math.Pow(d, float64(x)) - yx
			s += r * r
		}
		return s
	}
	grad := func(g, p []float64) {
		a, d := p[0], p[1]
		g[0], g[1] = 0, 0
		for x, yx := range y {
			fx := float64(x)
			dx := math.Pow(d, fx)
			r := a*dx - yx
			g[0] += 2 * r * dx
			if x > 0 {
				g[1] += 2 * r * a * fx * math.Pow(d, fx-1)
			}
		}
	}

	problem := optimize.Problem{Func: sse, Grad: grad}
	result, err := optimize.Minimize(problem, initialGuess(y), nil, &optimize.BFGS{})
	if err != nil {
		return DecayFit{}, errors.Newf(errors.CodeNumericalFitFailure, "decay fit did not converge: %v", err)
	}
	fit := DecayFit{Amplitude: result.X[0], Decay: result.X[1]}
	if math.IsNaN(fit.Decay) || math.IsInf(fit.Decay, 0) || math.IsNaN(result.F) {
		return DecayFit{}, errors.NumericalFitFailure("decay fit produced non-finite parameters")
	}
	return fit, nil
}

// initialGuess regresses log y on x over the leading positive values
func initialGuess(y []float64) []float64 {
	var sx, sy, sxx, sxy float64
	n := 0
	for x, v := range y {
		if v <= 0 {
			break
		}
		fx, lv := float64(x), math.Log(v)
		sx += fx
		sy += lv
		sxx += fx * fx
		sxy += fx * lv
		n++
	}
	if n < 2 {
		return []float64{1, 0.5}
	}
	fn := float64(n)
	slope := (fn*sxy - sx*sy) / (fn*sxx - sx*sx)
	intercept := (sy - slope*sx) / fn
	return []float64{math.Exp(intercept), math.Exp(slope)}
}
