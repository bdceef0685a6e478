package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/mbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() Config {
	c := config.DefaultConfig()
	c.Duration = 2
	return FromConfig(c)
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"pendulum"}, r.ListModels())
	assert.Equal(t, []string{"euler", "leapfrog", "rk4", "rk45", "verlet"}, r.ListIntegrators())
	assert.Equal(t, []string{"feedback", "none", "pid"}, r.ListControllers())
}

func TestRegistryUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.GetModel("cartpole", mbs.DefaultParams())
	assert.Error(t, err)
	_, err = r.GetIntegrator("midpoint")
	assert.Error(t, err)
	_, err = r.GetController("lqr", nil, mbs.Default())
	assert.Error(t, err)
}

func TestRunRecordsMetrics(t *testing.T) {
	e := New(testConfig(), NewRegistry(), zaptest.NewLogger(t))
	require.NoError(t, e.Setup())

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 200, res.StepsTaken)
	assert.Len(t, res.States, 201)
	for _, name := range []string{"energy", "energy_drift", "control_effort", "max_angle", "angle_rms"} {
		assert.Contains(t, res.Metrics, name)
	}
	assert.Less(t, res.Metrics["energy_drift"], 1e-6)
	assert.InDelta(t, 0.5, res.Metrics["max_angle"], 1e-6)
}

func TestRunWithoutSetup(t *testing.T) {
	_, err := New(testConfig(), NewRegistry(), nil).Run(context.Background())
	assert.Error(t, err)
}

func TestSetupRejectsBadParams(t *testing.T) {
	cfg := testConfig()
	cfg.Params.Mass = 0
	assert.Error(t, New(cfg, NewRegistry(), nil).Setup())
}

func TestAdaptiveRun(t *testing.T) {
	cfg := testConfig()
	cfg.Integrator = "rk45"
	cfg.Adaptive = true

	e := New(cfg, NewRegistry(), zaptest.NewLogger(t))
	require.NoError(t, e.Setup())

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.InDelta(t, 2.0, res.Times[len(res.Times)-1], 1e-9)
	assert.Less(t, res.StepsTaken, 200)
}

func TestFeedbackHoldsTarget(t *testing.T) {
	cfg := testConfig()
	cfg.Controller = "feedback"
	cfg.Duration = 5
	cfg.ControllerParams = map[string]float64{"wn": 6, "zeta": 1}

	e := New(cfg, NewRegistry(), nil)
	require.NoError(t, e.Setup())

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Final()[0], 1e-3)
	assert.Positive(t, res.Metrics["control_effort"])
}

func TestSweepPeriods(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 10

	e := New(cfg, NewRegistry(), zaptest.NewLogger(t))
	require.NoError(t, e.Setup())

	thetas := []float64{0.1, 1.0, 2.0}
	results, err := e.Sweep(context.Background(), thetas, 2)
	require.NoError(t, err)
	require.Len(t, results, len(thetas))

	t0 := e.Model().SmallAnglePeriod()
	prev := 0.0
	for i, res := range results {
		assert.Equal(t, thetas[i], res.States[0][0])
		p := analysis.Period(res, 0)
		assert.InEpsilon(t, analysis.LargeAmplitudePeriod(t0, thetas[i]), p, 1e-3)
		assert.Greater(t, p, prev)
		prev = p
	}
	assert.False(t, math.IsNaN(prev))
}

func TestProgressLoggedAtDebug(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 12

	core, logs := observer.New(zap.DebugLevel)
	e := New(cfg, NewRegistry(), zap.New(core))
	require.NoError(t, e.Setup())
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	steps := logs.FilterMessage("step")
	require.Equal(t, 3, steps.Len())
	last := steps.All()[2].ContextMap()
	assert.EqualValues(t, 2*ProgressEvery, last["step"])
	assert.Equal(t, "pendulum", last["model"])
}

func TestNoProgressAboveDebug(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := New(testConfig(), NewRegistry(), zap.New(core))
	require.NoError(t, e.Setup())
	_, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, logs.FilterMessage("step").Len())
}
