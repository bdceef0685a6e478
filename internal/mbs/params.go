package mbs

import (
	"fmt"
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/kinematics"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 1.0
	DefaultGravity = 9.81
)

// Box is the size of the visualised box along the body x, y and z axes.
type Box struct {
	Length float64
	Width  float64
	Height float64
}

type Params struct {
	Mass   float64
	Length float64
	// Inertia is the moment of inertia about the joint axis through the
	// centre of gravity.
	Inertia float64
	Gravity float64
	Damping float64
	// GravityDir must have unit length, or be zero for no gravity.
	GravityDir [3]float64
	// Axis is the joint axis in the link frame.
	Axis [3]float64
	Box  Box
}

// DefaultParams is a slender 1 kg, 1 m rod swinging about y under gravity
// along -z, inertia m l^2 / 12.
func DefaultParams() Params {
	return Params{
		Mass:       DefaultMass,
		Length:     DefaultLength,
		Inertia:    RodInertia(DefaultMass, DefaultLength),
		Gravity:    DefaultGravity,
		GravityDir: [3]float64{0, 0, -1},
		Axis:       kinematics.AxisY,
		Box:        Box{Length: 0.1, Width: 0.1, Height: DefaultLength},
	}
}

// RodInertia is the moment of inertia of a thin rod about its centre.
func RodInertia(mass, length float64) float64 {
	return mass * length * length / 12
}

func (p Params) Validate() error {
	switch {
	case !(p.Mass > 0):
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrParameterBounds, p.Mass)
	case !(p.Length > 0):
		return fmt.Errorf("%w: length must be positive, got %g", dynamo.ErrParameterBounds, p.Length)
	case !(p.Inertia >= 0):
		return fmt.Errorf("%w: inertia must not be negative, got %g", dynamo.ErrParameterBounds, p.Inertia)
	case !(p.Gravity >= 0):
		return fmt.Errorf("%w: gravity must not be negative, got %g", dynamo.ErrParameterBounds, p.Gravity)
	case !(p.Damping >= 0):
		return fmt.Errorf("%w: damping must not be negative, got %g", dynamo.ErrParameterBounds, p.Damping)
	}

	if n := norm(p.GravityDir); n != 0 && math.Abs(n-1) > 1e-9 {
		return fmt.Errorf("%w: gravity direction must be a unit vector, |%v| = %g",
			dynamo.ErrParameterBounds, p.GravityDir, n)
	}
	if norm(p.Axis) == 0 {
		return fmt.Errorf("%w: joint axis must not be zero", dynamo.ErrParameterBounds)
	}
	if p.Box.Length < 0 || p.Box.Width < 0 || p.Box.Height < 0 {
		return fmt.Errorf("%w: box dimensions must not be negative, got %+v", dynamo.ErrParameterBounds, p.Box)
	}
	return nil
}

func norm(v [3]float64) float64 {
	return math.Sqrt(kinematics.Dot(v, v))
}
