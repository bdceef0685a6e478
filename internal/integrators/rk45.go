package integrators

import (
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
)

// RK45 is the Dormand-Prince embedded pair with a proportional step size
// controller.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes one Dormand-Prince step of exactly dt, ignoring the error estimate.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	newX, _, _ := r.StepAdaptive(dyn, x, u, t, dt, 1e-6)
	return newX
}

// StepAdaptive returns the fifth-order solution and a proposal for the next
// step. When the embedded error estimate exceeds tol the step is rejected with
// dynamo.ErrStepRejected and the proposal is the size to retry with.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, error) {
	k := dopriTableau.stages(dyn, x, u, t, dt)
	xNew := combine(x, k, dopriTableau.b, dt)

	ratio := r.errorNorm(x, k, dt) / tol
	if ratio > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
		return xNew, dt * scale, dynamo.ErrStepRejected
	}

	next := dt * r.maxScale
	if ratio > 0 {
		next = dt * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2))
	}
	return xNew, next, nil
}

// errorNorm is the largest component of the embedded error estimate,
// relative to the state magnitude at the start of the step.
func (r *RK45) errorNorm(x dynamo.State, k []dynamo.State, dt float64) float64 {
	worst := 0.0
	for i := range x {
		est := 0.0
		for s, w := range dopriTableau.errW {
			est += w * k[s][i]
		}
		scale := math.Abs(x[i]) + math.Abs(dt*k[0][i]) + 1e-10
		worst = math.Max(worst, math.Abs(dt*est)/scale)
	}
	return worst
}
