package metrics

import (
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
)

// MaxAngle is the largest absolute joint angle reached.
type MaxAngle struct {
	max float64
}

func NewMaxAngle() *MaxAngle {
	return &MaxAngle{}
}

func (m *MaxAngle) Name() string { return "max_angle" }

func (m *MaxAngle) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) > 0 {
		m.max = math.Max(m.max, math.Abs(x[0]))
	}
}

func (m *MaxAngle) Value() float64 { return m.max }

func (m *MaxAngle) Reset() { m.max = 0 }
