package integrators

import "github.com/san-kum/mbsim/internal/dynamo"

// tableau is an explicit Runge-Kutta scheme. a is strictly lower
// triangular; row i holds the coefficients of stages 0..i-1. errW, when
// set, holds the difference between the solution weights and the embedded
// lower-order weights.
type tableau struct {
	c    []float64
	a    [][]float64
	b    []float64
	errW []float64
}

var (
	eulerTableau = &tableau{
		c: []float64{0},
		a: [][]float64{{}},
		b: []float64{1},
	}

	rk4Tableau = &tableau{
		c: []float64{0, 0.5, 0.5, 1},
		a: [][]float64{
			{},
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		b: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
	}

	// Dormand-Prince 5(4). The last stage is evaluated at the new solution,
	// so its weight in b is zero.
	dopriTableau = &tableau{
		c: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
		a: [][]float64{
			{},
			{1.0 / 5},
			{3.0 / 40, 9.0 / 40},
			{44.0 / 45, -56.0 / 15, 32.0 / 9},
			{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
			{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
			{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
		},
		b: []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
		errW: []float64{
			35.0/384 - 5179.0/57600,
			0,
			500.0/1113 - 7571.0/16695,
			125.0/192 - 393.0/640,
			-2187.0/6784 + 92097.0/339200,
			11.0/84 - 187.0/2100,
			-1.0 / 40,
		},
	}
)

// stages evaluates every stage derivative for one step of size dt from x.
// Control input is held constant across the step.
func (tb *tableau) stages(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) []dynamo.State {
	k := make([]dynamo.State, len(tb.c))
	y := make(dynamo.State, len(x))
	for s := range k {
		copy(y, x)
		for j, a := range tb.a[s] {
			axpy(y, dt*a, k[j])
		}
		k[s] = dyn.Derive(y, u, t+tb.c[s]*dt)
	}
	return k
}

// combine returns x + dt * sum(w[s] * k[s]).
func combine(x dynamo.State, k []dynamo.State, w []float64, dt float64) dynamo.State {
	out := x.Clone()
	for s, ws := range w {
		axpy(out, dt*ws, k[s])
	}
	return out
}

// axpy adds alpha*x to y in place.
func axpy(y dynamo.State, alpha float64, x dynamo.State) {
	if alpha == 0 {
		return
	}
	for i := range y {
		y[i] += alpha * x[i]
	}
}
