package optim

import (
	"context"
	"testing"

	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinations(t *testing.T) {
	g := NewGridSearch([]string{"kp", "kd"}, [][]float64{{1, 2}, {3, 4, 5}})
	combos := g.Combinations()
	require.Len(t, combos, 6)
	assert.Equal(t, map[string]float64{"kp": 1, "kd": 3}, combos[0])
	assert.Equal(t, map[string]float64{"kp": 2, "kd": 5}, combos[5])
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.Equal(t, []float64{2}, Linspace(2, 3, 1))
}

func pidBuilder(registry *experiment.Registry) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		c := config.DefaultConfig()
		c.Controller = "pid"
		c.Duration = 3
		cfg := experiment.FromConfig(c)
		cfg.ControllerParams["kp"] = params["kp"]
		cfg.ControllerParams["kd"] = params["kd"]
		cfg.ControllerParams["ki"] = 0

		exp := experiment.New(cfg, registry, nil)
		return exp, exp.Setup()
	}
}

func TestSearchPrefersDampedGains(t *testing.T) {
	g := NewGridSearch([]string{"kp", "kd"}, [][]float64{{5, 20}, {0, 2}})
	g.SetWorkers(2)

	best, val, err := g.Search(context.Background(), pidBuilder(experiment.NewRegistry()), "angle_rms")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"kp": 20, "kd": 2}, best)
	assert.Less(t, val, 0.2)
}

func TestSearchUnknownMetric(t *testing.T) {
	g := NewGridSearch([]string{"kp"}, [][]float64{{1}})
	_, _, err := g.Search(context.Background(), pidBuilder(experiment.NewRegistry()), "overshoot")
	assert.ErrorContains(t, err, "unknown metric")
}

func TestSearchShapeMismatch(t *testing.T) {
	g := NewGridSearch([]string{"kp", "kd"}, [][]float64{{1}})
	_, _, err := g.Search(context.Background(), pidBuilder(experiment.NewRegistry()), "angle_rms")
	assert.Error(t, err)
}
