// Package experiment assembles a model, integrator, controller and metrics
// into a runnable simulation.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/mbs"
	"go.uber.org/zap"
)

type Config struct {
	Model            string
	Integrator       string
	Controller       string
	InitState        []float64
	Dt               float64
	Duration         float64
	Seed             int64
	Adaptive         bool
	Tolerance        float64
	Params           mbs.Params
	ControllerParams map[string]float64
}

// FromConfig converts a loaded configuration file.
func FromConfig(c *config.Config) Config {
	return Config{
		Model:            c.Model,
		Integrator:       c.Integrator,
		Controller:       c.Controller,
		InitState:        c.GetInitState(),
		Dt:               c.Dt,
		Duration:         c.Duration,
		Seed:             c.Seed,
		Adaptive:         c.Integrator == "rk45",
		Params:           c.ModelParams(),
		ControllerParams: c.GetControllerParams(1),
	}
}

// SimConfig is the run loop configuration for this experiment.
func (c Config) SimConfig() dynamo.Config {
	sc := dynamo.DefaultConfig()
	sc.Dt = c.Dt
	sc.Duration = c.Duration
	sc.Seed = c.Seed
	sc.Adaptive = c.Adaptive
	if c.Tolerance > 0 {
		sc.Tolerance = c.Tolerance
	}
	return sc
}

type Experiment struct {
	cfg       Config
	registry  *Registry
	logger    *zap.Logger
	model     *mbs.Pendulum
	simulator *dynamo.Simulator
}

func New(cfg Config, registry *Registry, logger *zap.Logger) *Experiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		logger:   logger.With(zap.String("model", cfg.Model)),
	}
}

// Setup builds the model and a simulator for it.
func (e *Experiment) Setup() error {
	model, err := e.registry.GetModel(e.cfg.Model, e.cfg.Params)
	if err != nil {
		return err
	}
	e.model = model

	s, err := e.build()
	if err != nil {
		return err
	}
	e.simulator = s
	if e.logger.Core().Enabled(zap.DebugLevel) {
		s.AddObserver(&progressLogger{logger: e.logger, model: model, every: ProgressEvery})
	}

	e.logger.Debug("experiment ready",
		zap.String("integrator", e.cfg.Integrator),
		zap.String("controller", e.cfg.Controller),
		zap.Float64("joint_inertia", model.JointInertia()),
	)
	return nil
}

// build returns a simulator with its own integrator, controller and
// metrics, sharing the immutable model.
func (e *Experiment) build() (*dynamo.Simulator, error) {
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}
	ctrl, err := e.registry.GetController(e.cfg.Controller, e.cfg.ControllerParams, e.model)
	if err != nil {
		return nil, err
	}

	s := dynamo.New(e.model, integ, ctrl)
	for _, m := range e.registry.DefaultMetrics(e.model, e.cfg.ControllerParams["target"]) {
		s.AddMetric(m)
	}
	return s, nil
}

// Factory returns a simulator factory for parallel sweeps. Setup must have
// been called.
func (e *Experiment) Factory() dynamo.Factory {
	return e.build
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	start := time.Now()
	res, err := e.simulator.Run(ctx, dynamo.State(e.cfg.InitState).Clone(), e.cfg.SimConfig())
	if err != nil {
		e.logger.Error("run failed", zap.Error(err))
		return nil, err
	}

	for _, stepErr := range res.Errors {
		e.logger.Warn("run stopped early", zap.Error(stepErr))
	}
	e.logger.Debug("run finished",
		zap.Int("steps", res.StepsTaken),
		zap.Float64("energy_drift", res.EnergyDrift),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Sweep runs the experiment once per initial angle, at rest, in parallel.
func (e *Experiment) Sweep(ctx context.Context, thetas []float64, workers int) ([]*dynamo.Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	inits := make([]dynamo.State, len(thetas))
	for i, th := range thetas {
		inits[i] = dynamo.State{th, 0}
	}

	e.logger.Debug("sweep", zap.Int("runs", len(inits)), zap.Int("workers", workers))
	return dynamo.Sweep(ctx, e.Factory(), inits, e.cfg.SimConfig(), workers)
}

func (e *Experiment) Model() *mbs.Pendulum {
	return e.model
}

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}
