package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
	"gonum.org/v1/gonum/interp"
)

// Resample interpolates series, sampled at the strictly increasing times,
// linearly onto a uniform grid of step dt starting at times[0].
func Resample(times, series []float64, dt float64) ([]float64, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %g", dt)
	}
	if len(times) != len(series) || len(times) < 2 {
		return nil, fmt.Errorf("need at least two samples with matching times, got %d and %d", len(times), len(series))
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(times, series); err != nil {
		return nil, err
	}

	t0 := times[0]
	n := int(math.Floor((times[len(times)-1]-t0)/dt+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = pl.Predict(t0 + float64(i)*dt)
	}
	return out, nil
}

// SpectralPeriod is the period of the dominant frequency of state
// component idx after resampling it every dt seconds, so variable-step runs
// are measured on a uniform grid. It is zero when no frequency is found.
func SpectralPeriod(res *dynamo.Result, idx int, dt float64) (float64, error) {
	samples, err := Resample(res.Times, res.Series(idx), dt)
	if err != nil {
		return 0, err
	}
	f := DominantFrequency(samples, dt)
	if f <= 0 {
		return 0, nil
	}
	return 1 / f, nil
}
