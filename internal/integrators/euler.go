package integrators

import "github.com/san-kum/mbsim/internal/dynamo"

// Euler is the explicit first-order method. It gains energy on the
// undamped pendulum and is kept as a baseline for compare.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return combine(x, eulerTableau.stages(dyn, x, u, t, dt), eulerTableau.b, dt)
}
