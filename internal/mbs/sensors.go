package mbs

import (
	"fmt"

	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/kinematics"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// SensorValues groups the joint, body pose and energy sensors.
type SensorValues struct {
	Angle       float64
	Velocity    float64
	Position    *mat.VecDense
	Orientation *mat.Dense
	Quaternion  quat.Number
	Kinetic     float64
	Potential   float64
}

func (s SensorValues) Energy() float64 {
	return s.Kinetic + s.Potential
}

func (p *Pendulum) Sensors(y dynamo.State) (SensorValues, error) {
	if err := dynamo.CheckState(y, stateDim); err != nil {
		return SensorValues{}, fmt.Errorf("sensors: %w", err)
	}

	r, T, err := p.Visual(y)
	if err != nil {
		return SensorValues{}, err
	}

	return SensorValues{
		Angle:       y[0],
		Velocity:    y[1],
		Position:    r,
		Orientation: T,
		Quaternion:  kinematics.Quaternion(T),
		Kinetic:     p.KineticEnergy(y),
		Potential:   p.PotentialEnergy(y),
	}, nil
}
