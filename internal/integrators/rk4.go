package integrators

import "github.com/san-kum/mbsim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	k := rk4Tableau.stages(dyn, x, u, t, dt)
	return combine(x, k, rk4Tableau.b, dt)
}
