// Package optim tunes experiment parameters by exhaustive search.
package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/mbsim/internal/experiment"
	"golang.org/x/sync/errgroup"
)

// Builder returns a ready experiment for one parameter combination.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.GOMAXPROCS(0)}
}

// SetWorkers bounds the number of experiments run at once.
func (g *GridSearch) SetWorkers(n int) {
	if n > 0 {
		g.workers = n
	}
}

// Combinations lists every point of the grid, last parameter varying
// fastest.
func (g *GridSearch) Combinations() []map[string]float64 {
	combos := []map[string]float64{{}}
	for i, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(combos)*len(g.ranges[i]))
		for _, c := range combos {
			for _, v := range g.ranges[i] {
				m := make(map[string]float64, len(c)+1)
				for k, cv := range c {
					m[k] = cv
				}
				m[name] = v
				next = append(next, m)
			}
		}
		combos = next
	}
	return combos
}

// Search runs one experiment per grid point and returns the point with the
// smallest value of metricName. Combinations whose metric is NaN, or whose
// run stops early, never win.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid has %d names and %d ranges", len(g.paramNames), len(g.ranges))
	}

	combos := g.Combinations()
	values := make([]float64, len(combos))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, params := range combos {
		eg.Go(func() error {
			exp, err := build(params)
			if err != nil {
				return fmt.Errorf("grid point %v: %w", params, err)
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("grid point %v: %w", params, err)
			}

			v, ok := res.Metrics[metricName]
			if !ok {
				return fmt.Errorf("unknown metric: %s", metricName)
			}
			if len(res.Errors) > 0 || math.IsNaN(v) {
				v = math.Inf(1)
			}
			values[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for i, v := range values {
		if v < best {
			best = v
			bestParams = combos[i]
		}
	}
	if bestParams == nil {
		return nil, best, fmt.Errorf("no grid point produced a finite %s", metricName)
	}
	return bestParams, best, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}
