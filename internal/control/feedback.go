package control

import "github.com/san-kum/mbsim/internal/dynamo"

type StateFeedback struct {
	K      [][]float64
	Target dynamo.State
}

func NewStateFeedback(k [][]float64, target dynamo.State) *StateFeedback {
	return &StateFeedback{K: k, Target: target}
}

func (f *StateFeedback) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, len(f.K))
	for i := range u {
		for j := range x {
			target := 0.0
			if j < len(f.Target) {
				target = f.Target[j]
			}
			if j < len(f.K[i]) {
				u[i] -= f.K[i][j] * (x[j] - target)
			}
		}
	}
	return u
}

// PendulumGains places the closed-loop poles of the hanging pendulum,
// linearised as inertia*qdd + stiffness*q = u, at natural frequency wn with
// damping ratio zeta.
func PendulumGains(inertia, stiffness, wn, zeta float64) [][]float64 {
	return [][]float64{{inertia*wn*wn - stiffness, 2 * inertia * zeta * wn}}
}
