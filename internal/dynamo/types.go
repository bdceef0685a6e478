package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is a system state vector. The arithmetic helpers return new
// vectors and require operands of equal length.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsInf(v, 0) {
			return false
		}
	}
	return !floats.HasNaN(s)
}

func (s State) Norm() float64 { return floats.Norm(s, 2) }

func (s State) Add(other State) State {
	return floats.AddTo(make(State, len(s)), s, other)
}

func (s State) Sub(other State) State {
	return floats.SubTo(make(State, len(s)), s, other)
}

func (s State) Scale(factor float64) State {
	return floats.ScaleTo(make(State, len(s)), factor, s)
}

type Control []float64

// System is an ODE right-hand side dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, u Control, t, dt, tol float64) (State, float64, error)
}

// Controller maps the measured state to the control input for the next step.
type Controller interface {
	Compute(x State, t float64) Control
}

// Metric accumulates a scalar over a run. Observe sees every state before
// it is advanced.
type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

// Configurable systems expose their scalar parameters by name.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64

	// Adaptive stepping bounds, unused for fixed steps.
	Adaptive  bool
	Tolerance float64
	MaxDt     float64
	MinDt     float64

	// ValidateState stops the run at the first non-finite state.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		Tolerance:     1e-6,
		MaxDt:         0.1,
		MinDt:         1e-8,
		ValidateState: true,
	}
}

// Result holds one run. States and Times include the initial state, so they
// are one longer than Controls.
type Result struct {
	States      []State
	Controls    []Control
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if r == nil || len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// Series extracts the idx-th state component over time.
func (r *Result) Series(idx int) []float64 {
	out := make([]float64, 0, len(r.States))
	for _, s := range r.States {
		if idx < len(s) {
			out = append(out, s[idx])
		}
	}
	return out
}
