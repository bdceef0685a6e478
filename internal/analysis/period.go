package analysis

import (
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
	"gonum.org/v1/gonum/mathext"
)

// Crossings returns the interpolated times at which series rises through
// level.
func Crossings(times, series []float64, level float64) []float64 {
	var out []float64
	n := min(len(times), len(series))
	for i := 1; i < n; i++ {
		prev, curr := series[i-1], series[i]
		if prev < level && curr >= level {
			frac := (level - prev) / (curr - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period is the mean interval between upward zero crossings of state
// component idx. It is zero when fewer than two crossings occur.
func Period(res *dynamo.Result, idx int) float64 {
	c := Crossings(res.Times, res.Series(idx), 0)
	if len(c) < 2 {
		return 0
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1)
}

// LargeAmplitudePeriod scales the small-angle period t0 to a swing of the
// given amplitude: T = t0 * 2/pi * K(m) with m = sin^2(amplitude/2). It is
// +Inf at or beyond pi.
func LargeAmplitudePeriod(t0, amplitude float64) float64 {
	k := math.Sin(math.Abs(amplitude) / 2)
	if k >= 1 {
		return math.Inf(1)
	}
	return t0 * 2 / math.Pi * mathext.CompleteK(k*k)
}
