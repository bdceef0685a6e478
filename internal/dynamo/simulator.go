package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 over cfg.Duration. With cfg.Adaptive the step size
// follows the integrator's error estimate and the loop is bounded by time
// instead of a fixed step count. A failing step ends the run early and is
// recorded in Result.Errors; only configuration errors and cancellation are
// returned.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.check(x0, cfg); err != nil {
		return nil, err
	}

	st := s.stepper(cfg)
	res := &Result{
		States:   make([]State, 0, st.steps+1),
		Controls: make([]Control, 0, st.steps),
		Times:    make([]float64, 0, st.steps+1),
		Metrics:  make(map[string]float64, len(s.metrics)),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	x, t := x0.Clone(), 0.0
	res.States = append(res.States, x.Clone())
	res.Times = append(res.Times, t)
	e0 := s.energy(x)

	for i := 0; st.more(i, t); i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		u := s.controller.Compute(x, t)
		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, o := range s.observers {
			o.OnStep(x, u, t)
		}

		next, h, err := st.advance(x, u, t)
		if err == nil && cfg.ValidateState && !next.IsValid() {
			err = ErrInvalidState
		}
		if err != nil {
			res.Errors = append(res.Errors, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err})
			break
		}

		x, t = next, t+h
		res.StepsTaken++
		res.States = append(res.States, x.Clone())
		res.Controls = append(res.Controls, u)
		res.Times = append(res.Times, t)
	}

	if e0 != 0 {
		res.EnergyDrift = math.Abs(s.energy(x)-e0) / math.Abs(e0)
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}

// RunWithCallback steps like Run without recording anything, handing every
// state to callback before it is advanced. It stops when callback returns
// false.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, Control, float64) bool) error {
	if err := s.check(x0, cfg); err != nil {
		return err
	}

	st := s.stepper(cfg)
	x, t := x0.Clone(), 0.0
	for i := 0; st.more(i, t); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		u := s.controller.Compute(x, t)
		if !callback(x, u, t) {
			return nil
		}

		next, h, err := st.advance(x, u, t)
		if err == nil && cfg.ValidateState && !next.IsValid() {
			err = ErrInvalidState
		}
		if err != nil {
			return &SimulationError{Step: i, Time: t, State: x, Wrapped: err}
		}
		x, t = next, t+h
	}
	return nil
}

func (s *Simulator) check(x0 State, cfg Config) error {
	switch {
	case cfg.Dt <= 0:
		return fmt.Errorf("dt must be positive, got %g", cfg.Dt)
	case cfg.Duration <= 0:
		return fmt.Errorf("duration must be positive, got %g", cfg.Duration)
	case cfg.Adaptive && cfg.Tolerance <= 0:
		return errors.New("tolerance must be positive for adaptive stepping")
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: initial state has %d entries, system wants %d",
			ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	return nil
}

func (s *Simulator) energy(x State) float64 {
	if h, ok := s.dyn.(Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}

func (s *Simulator) stepper(cfg Config) *stepper {
	return &stepper{
		dyn:   s.dyn,
		integ: s.integrator,
		cfg:   cfg,
		dt:    cfg.Dt,
		steps: int(math.Round(cfg.Duration / cfg.Dt)),
	}
}

// stepper advances one state at a time, carrying the step size proposal
// between adaptive steps.
type stepper struct {
	dyn   System
	integ Integrator
	cfg   Config
	dt    float64
	steps int
}

func (st *stepper) more(i int, t float64) bool {
	if st.cfg.Adaptive {
		return st.cfg.Duration-t > st.cfg.MinDt
	}
	return i < st.steps
}

// advance returns the next state and the step size that produced it.
func (st *stepper) advance(x State, u Control, t float64) (State, float64, error) {
	if !st.cfg.Adaptive {
		return st.integ.Step(st.dyn, x, u, t, st.dt), st.dt, nil
	}

	next, used, proposal, err := st.adapt(x, u, t, math.Min(st.dt, st.cfg.Duration-t))
	if err != nil {
		return nil, 0, err
	}
	st.dt = proposal
	return next, used, nil
}

// adapt shrinks h until the step meets the tolerance. Integrators without
// their own error estimate are checked by step doubling.
func (st *stepper) adapt(x State, u Control, t, h float64) (State, float64, float64, error) {
	tol := st.cfg.Tolerance
	for {
		if h < st.cfg.MinDt {
			return nil, 0, 0, ErrStepTooSmall
		}

		if ai, ok := st.integ.(AdaptiveIntegrator); ok {
			next, proposal, err := ai.StepAdaptive(st.dyn, x, u, t, h, tol)
			if errors.Is(err, ErrStepRejected) {
				h = math.Min(proposal, h/2)
				continue
			}
			if err != nil {
				return nil, 0, 0, err
			}
			return next, h, st.clamp(proposal), nil
		}

		full := st.integ.Step(st.dyn, x, u, t, h)
		mid := st.integ.Step(st.dyn, x, u, t, h/2)
		next := st.integ.Step(st.dyn, mid, u, t+h/2, h/2)

		est := full.Sub(next).Norm()
		if est > tol {
			// rejected; the loop head fails once h drops below MinDt
			h /= 2
			continue
		}

		proposal := h
		if est < tol/10 {
			proposal = 2 * h
		}
		return next, h, st.clamp(proposal), nil
	}
}

func (st *stepper) clamp(dt float64) float64 {
	if st.cfg.MaxDt > 0 && dt > st.cfg.MaxDt {
		return st.cfg.MaxDt
	}
	return math.Max(dt, st.cfg.MinDt)
}
