// Package automation runs scripted batches of experiments: YAML scenarios,
// parameter sweeps and Monte Carlo release studies.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/experiment"
	"github.com/san-kum/mbsim/internal/storage"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Scenario is a named sequence of runs. Each step starts from the defaults
// and overrides what it sets.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Integrator string                   `yaml:"integrator"`
	Controller string                   `yaml:"controller"`
	Duration   float64                  `yaml:"duration"`
	Dt         float64                  `yaml:"dt"`
	InitState  *config.InitStateConfig  `yaml:"init_state"`
	Params     map[string]float64       `yaml:"params"`
	Control    *config.ControllerConfig `yaml:"controller_params"`
	Save       bool                     `yaml:"save"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step against the defaults.
func (s ScenarioStep) Config() (*config.Config, error) {
	c := config.DefaultConfig()
	if s.Integrator != "" {
		c.Integrator = s.Integrator
	}
	if s.Controller != "" {
		c.Controller = s.Controller
	}
	if s.Duration > 0 {
		c.Duration = s.Duration
	}
	if s.Dt > 0 {
		c.Dt = s.Dt
	}
	if s.InitState != nil {
		c.InitState = *s.InitState
	}
	if s.Control != nil {
		c.ControllerParams = *s.Control
	}
	for name, v := range s.Params {
		if err := setParam(c, name, v); err != nil {
			return nil, err
		}
	}
	return c, c.Validate()
}

// StepResult is the outcome of one scenario step. RunID is set for saved
// steps.
type StepResult struct {
	Result *dynamo.Result
	RunID  string
}

// RunScenario executes the steps in order, saving those marked save to st.
// It stops at the first failing step and returns the results so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
		)

		exp := experiment.New(experiment.FromConfig(cfg), registry, logger)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Result: res}
		if step.Save && st != nil {
			sr.RunID, err = st.Save(storage.Run{
				Model:      cfg.Model,
				Params:     exp.Model().GetParams(),
				Integrator: cfg.Integrator,
				Controller: cfg.Controller,
				Dt:         cfg.Dt,
				Duration:   cfg.Duration,
				Seed:       cfg.Seed,
			}, res)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}
	return results, nil
}

// ParamSweepResult is the swing period measured for one parameter value.
type ParamSweepResult struct {
	Value     float64
	Period    float64
	Predicted float64
}

// RunParamSweep varies one model parameter over values and measures the
// swing period of the base configuration for each.
func RunParamSweep(ctx context.Context, base *config.Config, name string, values []float64, registry *experiment.Registry) ([]ParamSweepResult, error) {
	out := make([]ParamSweepResult, 0, len(values))
	for _, v := range values {
		resolved := *base
		if err := setParam(&resolved, name, v); err != nil {
			return nil, err
		}
		if err := resolved.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", name, v, err)
		}

		exp := experiment.New(experiment.FromConfig(&resolved), registry, nil)
		if err := exp.Setup(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", name, v, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", name, v, err)
		}

		t0 := exp.Model().SmallAnglePeriod()
		out = append(out, ParamSweepResult{
			Value:     v,
			Period:    analysis.Period(res, 0),
			Predicted: analysis.LargeAmplitudePeriod(t0, resolved.InitState.Theta),
		})
	}
	return out, nil
}

func setParam(c *config.Config, name string, v float64) error {
	switch name {
	case "mass":
		c.Params.Mass = v
	case "length":
		c.Params.Length = v
	case "inertia":
		c.Params.Inertia = v
	case "gravity":
		c.Params.Gravity = v
	case "damping":
		c.Params.Damping = v
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	return nil
}

type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Workers      int
}

type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Period     float64
	// Stable reports whether the run finished with a finite state.
	Stable bool
}

// RunMonteCarlo perturbs the base initial state uniformly by up to
// Perturbation in each component and runs the trials in parallel. The
// perturbations are drawn from Base.Seed, so equal seeds repeat.
func RunMonteCarlo(ctx context.Context, mc MonteCarloConfig, registry *experiment.Registry, logger *zap.Logger) ([]MonteCarloResult, error) {
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("need at least one trial, got %d", mc.NumTrials)
	}

	exp := experiment.New(experiment.FromConfig(mc.Base), registry, logger)
	if err := exp.Setup(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(mc.Base.Seed))
	base := mc.Base.GetInitState()
	inits := make([]dynamo.State, mc.NumTrials)
	for i := range inits {
		x := make(dynamo.State, len(base))
		for j, v := range base {
			x[j] = v + (rng.Float64()-0.5)*2*mc.Perturbation
		}
		inits[i] = x
	}

	sweep, err := dynamo.Sweep(ctx, exp.Factory(), inits, experiment.FromConfig(mc.Base).SimConfig(), mc.Workers)
	if err != nil {
		return nil, err
	}

	out := make([]MonteCarloResult, len(sweep))
	for i, res := range sweep {
		final := res.Final()
		out[i] = MonteCarloResult{
			TrialID:    i,
			InitState:  inits[i],
			FinalState: final,
			Period:     analysis.Period(res, 0),
			Stable:     len(res.Errors) == 0 && final.IsValid(),
		}
	}
	return out, nil
}

// MonteCarloStats summarises trial results: the stable and unstable counts
// and the mean and standard deviation of the measured periods.
func MonteCarloStats(results []MonteCarloResult) (stable, unstable int, mean, std float64) {
	var periods []float64
	for _, r := range results {
		if !r.Stable {
			unstable++
			continue
		}
		stable++
		if r.Period > 0 {
			periods = append(periods, r.Period)
		}
	}
	if len(periods) == 0 {
		return stable, unstable, 0, 0
	}

	mean, std = stat.PopMeanStdDev(periods, nil)
	return stable, unstable, mean, std
}
