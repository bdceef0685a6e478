package mbs

import (
	"fmt"
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/kinematics"
)

const (
	stateDim   = 2
	controlDim = 1
)

type Pendulum struct {
	params Params
	axis   [3]float64 // unit joint axis
	link   [3]float64 // joint position in body coordinates
	moment float64    // inertia about the joint axis through the pivot
}

func NewPendulum(p Params) (*Pendulum, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m := &Pendulum{params: p}
	m.derive()
	return m, nil
}

// Default returns the pendulum built from DefaultParams.
func Default() *Pendulum {
	m, err := NewPendulum(DefaultParams())
	if err != nil {
		panic(err)
	}
	return m
}

func (p *Pendulum) derive() {
	n := norm(p.params.Axis)
	p.axis = [3]float64{p.params.Axis[0] / n, p.params.Axis[1] / n, p.params.Axis[2] / n}
	p.link = [3]float64{0, 0, p.params.Length / 2}

	// parallel axis: distance of the centre of gravity from the joint axis
	arm := kinematics.Cross(p.axis, p.link)
	p.moment = p.params.Inertia + p.params.Mass*kinematics.Dot(arm, arm)
}

func (p *Pendulum) Params() Params { return p.params }

func (p *Pendulum) StateDim() int {
	return stateDim
}

func (p *Pendulum) ControlDim() int {
	return controlDim
}

// Derive is the equation of motion. u[0], when present, is a torque about
// the joint axis. The state is not validated; see DerState.
func (p *Pendulum) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	q, qd := x[0], x[1]

	torque := 0.0
	if len(u) > 0 {
		torque = u[0]
	}

	qdd := (p.gravityTorque(q) - p.params.Damping*qd + torque) / p.moment

	return dynamo.State{qd, qdd}
}

// DerState evaluates the state derivative [qd, qdd] at time t without
// control input. y must hold exactly two finite values; it is not modified.
func (p *Pendulum) DerState(t float64, y dynamo.State) (dynamo.State, error) {
	if err := dynamo.CheckState(y, stateDim); err != nil {
		return nil, fmt.Errorf("der_state: %w", err)
	}
	return p.Derive(y, nil, t), nil
}

// cgPosition is the centre of gravity in the inertial frame; the pivot is
// the origin.
func (p *Pendulum) cgPosition(q float64) [3]float64 {
	rl := kinematics.RotateAbout(p.axis, q, p.link)
	return [3]float64{-rl[0], -rl[1], -rl[2]}
}

// gravityTorque is the component along the joint axis of r x (m g e_g).
func (p *Pendulum) gravityTorque(q float64) float64 {
	r := p.cgPosition(q)
	return p.params.Mass * p.params.Gravity * kinematics.Dot(kinematics.Cross(r, p.params.GravityDir), p.axis)
}

func (p *Pendulum) KineticEnergy(x dynamo.State) float64 {
	return 0.5 * p.moment * x[1] * x[1]
}

// PotentialEnergy is measured from the pivot height.
func (p *Pendulum) PotentialEnergy(x dynamo.State) float64 {
	r := p.cgPosition(x[0])
	return -p.params.Mass * p.params.Gravity * kinematics.Dot(p.params.GravityDir, r)
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	return p.KineticEnergy(x) + p.PotentialEnergy(x)
}

// JointInertia is the moment of inertia about the joint axis.
func (p *Pendulum) JointInertia() float64 {
	return p.moment
}

// Stiffness is the restoring gravity torque per radian for small swings
// about the hanging equilibrium.
func (p *Pendulum) Stiffness() float64 {
	arm := kinematics.Cross(p.axis, p.link)
	g := kinematics.Cross(p.axis, p.params.GravityDir)
	return p.params.Mass * p.params.Gravity * math.Sqrt(kinematics.Dot(arm, arm)*kinematics.Dot(g, g))
}

// SmallAnglePeriod is the period of small oscillations about the hanging
// equilibrium. It is +Inf when gravity exerts no restoring torque.
func (p *Pendulum) SmallAnglePeriod() float64 {
	k := p.Stiffness()
	if k == 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi * math.Sqrt(p.moment/k)
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.params.Mass,
		"length":  p.params.Length,
		"inertia": p.params.Inertia,
		"gravity": p.params.Gravity,
		"damping": p.params.Damping,
	}
}

// SetParam changes one scalar parameter. The change is rejected, leaving the
// model untouched, when the result would not validate.
func (p *Pendulum) SetParam(name string, value float64) error {
	next := p.params
	switch name {
	case "mass":
		next.Mass = value
	case "length":
		next.Length = value
	case "inertia":
		next.Inertia = value
	case "gravity":
		next.Gravity = value
	case "damping":
		next.Damping = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	p.params = next
	p.derive()
	return nil
}
