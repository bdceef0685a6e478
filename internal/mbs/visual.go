package mbs

import (
	"fmt"

	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/kinematics"
	"gonum.org/v1/gonum/mat"
)

// Visual returns the pose of the visualised box for state y: the position r
// of the body frame origin and the rotation T from body to inertial
// coordinates. Only y[0] is read, but y must still be a valid state.
func (p *Pendulum) Visual(y dynamo.State) (*mat.VecDense, *mat.Dense, error) {
	if err := dynamo.CheckState(y, stateDim); err != nil {
		return nil, nil, fmt.Errorf("visual: %w", err)
	}

	T := kinematics.AxisRotation(p.axis, y[0])

	// 0 - x keeps zero components at +0, unlike scaling by -1.
	r := mat.NewVecDense(3, nil)
	r.SubVec(r, kinematics.Apply(T, mat.NewVecDense(3, p.link[:])))

	return r, T, nil
}

// Box returns the size of the visualised box.
func (p *Pendulum) Box() Box {
	return p.params.Box
}

// BoxCorners returns the eight corners of the box in inertial coordinates
// for the pose (r, T) returned by Visual.
func (p *Pendulum) BoxCorners(r mat.Vector, T mat.Matrix) [8][3]float64 {
	b := p.params.Box
	hx, hy, hz := b.Length/2, b.Width/2, b.Height/2

	var out [8][3]float64
	i := 0
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				local := mat.NewVecDense(3, []float64{sx * hx, sy * hy, sz * hz})
				w := kinematics.Apply(T, local)
				out[i] = [3]float64{w.AtVec(0) + r.AtVec(0), w.AtVec(1) + r.AtVec(1), w.AtVec(2) + r.AtVec(2)}
				i++
			}
		}
	}
	return out
}
