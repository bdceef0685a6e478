package control

import (
	"fmt"
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
)

// PID drives the joint angle x[0] to Target. The derivative term uses the
// measured joint velocity x[1], so setpoint changes do not produce a kick.
// MaxTorque, when positive, saturates the output and freezes the integral
// while saturated.
type PID struct {
	Kp        float64
	Ki        float64
	Kd        float64
	Target    float64
	MaxTorque float64

	integral float64
	prevT    float64
	started  bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
	}
}

func (p *PID) Compute(x dynamo.State, t float64) dynamo.Control {
	if len(x) < 2 {
		return dynamo.Control{0}
	}

	e := p.Target - x[0]

	integral := p.integral
	if p.started && t > p.prevT {
		integral += e * (t - p.prevT)
	}
	p.prevT = t
	p.started = true

	u := p.Kp*e + p.Ki*integral - p.Kd*x[1]
	if p.MaxTorque > 0 && math.Abs(u) > p.MaxTorque {
		return dynamo.Control{math.Copysign(p.MaxTorque, u)}
	}

	p.integral = integral
	return dynamo.Control{u}
}

// Reset clears the integral term.
func (p *PID) Reset() {
	p.integral = 0
	p.prevT = 0
	p.started = false
}

func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":        p.Kp,
		"Ki":        p.Ki,
		"Kd":        p.Kd,
		"Target":    p.Target,
		"MaxTorque": p.MaxTorque,
	}
}

func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	case "MaxTorque":
		p.MaxTorque = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	return nil
}
