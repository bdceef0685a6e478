package metrics

import (
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
)

// AngleRMS is the root mean square distance of the joint angle from a
// target angle.
type AngleRMS struct {
	target float64
	sq     mean
}

func NewAngleRMS(target float64) *AngleRMS {
	return &AngleRMS{target: target}
}

func (a *AngleRMS) Name() string { return "angle_rms" }

func (a *AngleRMS) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) == 0 {
		return
	}
	e := x[0] - a.target
	a.sq.add(e * e)
}

func (a *AngleRMS) Value() float64 { return math.Sqrt(a.sq.value()) }

func (a *AngleRMS) Reset() { a.sq.reset() }
