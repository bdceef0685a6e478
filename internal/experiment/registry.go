package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/mbsim/internal/control"
	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/integrators"
	"github.com/san-kum/mbsim/internal/mbs"
	"github.com/san-kum/mbsim/internal/metrics"
)

type ControllerFactory func(params map[string]float64, model *mbs.Pendulum) dynamo.Controller

type Registry struct {
	models      map[string]func(mbs.Params) (*mbs.Pendulum, error)
	integrators map[string]func() dynamo.Integrator
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func(mbs.Params) (*mbs.Pendulum, error)),
		integrators: make(map[string]func() dynamo.Integrator),
		controllers: make(map[string]ControllerFactory),
	}

	r.models["pendulum"] = mbs.NewPendulum

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }
	r.integrators["leapfrog"] = func() dynamo.Integrator { return integrators.NewLeapfrog() }

	r.controllers["none"] = func(params map[string]float64, model *mbs.Pendulum) dynamo.Controller {
		return control.NewNone(model.ControlDim())
	}
	r.controllers["pid"] = func(params map[string]float64, model *mbs.Pendulum) dynamo.Controller {
		return control.NewPID(params["kp"], params["ki"], params["kd"], params["target"])
	}
	r.controllers["feedback"] = func(params map[string]float64, model *mbs.Pendulum) dynamo.Controller {
		wn, zeta := params["wn"], params["zeta"]
		if wn == 0 {
			wn = 2 * math.Sqrt(model.Stiffness()/model.JointInertia())
		}
		if zeta == 0 {
			zeta = 1
		}
		k := control.PendulumGains(model.JointInertia(), model.Stiffness(), wn, zeta)
		return control.NewStateFeedback(k, dynamo.State{params["target"], 0})
	}

	return r
}

func (r *Registry) GetModel(name string, params mbs.Params) (*mbs.Pendulum, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(params)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetController(name string, params map[string]float64, model *mbs.Pendulum) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(params, model), nil
}

func (r *Registry) ListModels() []string      { return keys(r.models) }
func (r *Registry) ListIntegrators() []string { return keys(r.integrators) }
func (r *Registry) ListControllers() []string { return keys(r.controllers) }

// DefaultMetrics returns fresh metric instances for one run of model.
// target is the angle the controller, if any, aims for.
func (r *Registry) DefaultMetrics(model *mbs.Pendulum, target float64) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergy(model),
		metrics.NewEnergyDrift(model),
		metrics.NewControlEffort(),
		metrics.NewMaxAngle(),
		metrics.NewAngleRMS(target),
	}
}

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
