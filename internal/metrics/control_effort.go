package metrics

import (
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
)

// ControlEffort is the mean absolute joint torque per step.
type ControlEffort struct {
	torque mean
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	total := 0.0
	for _, tau := range u {
		total += math.Abs(tau)
	}
	c.torque.add(total)
}

func (c *ControlEffort) Value() float64 { return c.torque.value() }

func (c *ControlEffort) Reset() { c.torque.reset() }
