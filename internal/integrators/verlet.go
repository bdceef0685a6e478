package integrators

import "github.com/san-kum/mbsim/internal/dynamo"

// The second-order schemes below expect states laid out as
// [positions..., velocities...], which is how the pendulum stores [q, qd],
// and take accelerations from the velocity half of the derivative.

func accel(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64) []float64 {
	return dyn.Derive(x, u, t)[len(x)/2:]
}

// Verlet is velocity Verlet: drift with the current acceleration, then
// average the old and new accelerations for the velocity update.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := len(x) / 2
	next := x.Clone()
	pos, vel := next[:half], next[half:]

	a0 := accel(dyn, x, u, t)
	for i := range pos {
		pos[i] += vel[i]*dt + 0.5*a0[i]*dt*dt
	}

	a1 := accel(dyn, next, u, t+dt)
	for i := range vel {
		vel[i] += 0.5 * (a0[i] + a1[i]) * dt
	}
	return next
}

// Leapfrog is the kick-drift-kick form with the same state layout as Verlet.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := len(x) / 2
	next := x.Clone()
	pos, vel := next[:half], next[half:]

	kick := func(a []float64) {
		for i := range vel {
			vel[i] += 0.5 * dt * a[i]
		}
	}

	kick(accel(dyn, x, u, t))
	for i := range pos {
		pos[i] += vel[i] * dt
	}
	kick(accel(dyn, next, u, t+dt))
	return next
}
