// Package kinematics provides the rotation matrices and orientation
// conversions used for joint kinematics.
//
// All matrices map child-frame coordinates into the parent frame, so a body
// rotated by q about the y axis has the familiar
//
//	[ cos q  0  sin q]
//	[   0    1    0  ]
//	[-sin q  0  cos q]
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	AxisX = [3]float64{1, 0, 0}
	AxisY = [3]float64{0, 1, 0}
	AxisZ = [3]float64{0, 0, 1}
)

// AxisRotation returns the rotation by q about axis. The axis is normalised
// first; a zero axis yields the identity.
func AxisRotation(axis [3]float64, q float64) *mat.Dense {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if n == 0 {
		return Identity()
	}
	v1, v2, v3 := axis[0]/n, axis[1]/n, axis[2]/n

	s, c := math.Sincos(q)
	e := 1 - c

	return mat.NewDense(3, 3, []float64{
		c + v1*v1*e, v1*v2*e - v3*s, v1*v3*e + v2*s,
		v2*v1*e + v3*s, c + v2*v2*e, v2*v3*e - v1*s,
		v3*v1*e - v2*s, v3*v2*e + v1*s, c + v3*v3*e,
	})
}

func Rx(q float64) *mat.Dense { return AxisRotation(AxisX, q) }
func Ry(q float64) *mat.Dense { return AxisRotation(AxisY, q) }
func Rz(q float64) *mat.Dense { return AxisRotation(AxisZ, q) }

func Identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// Apply returns R*v for a 3x3 rotation and a 3-vector.
func Apply(r mat.Matrix, v mat.Vector) *mat.VecDense {
	out := mat.NewVecDense(3, nil)
	out.MulVec(r, v)
	return out
}

// IsRotation reports whether r is orthonormal with determinant +1 within tol.
func IsRotation(r mat.Matrix, tol float64) bool {
	rows, cols := r.Dims()
	if rows != 3 || cols != 3 {
		return false
	}
	var rrt mat.Dense
	rrt.Mul(r, r.T())
	if !mat.EqualApprox(&rrt, Identity(), tol) {
		return false
	}
	return math.Abs(mat.Det(r)-1) <= tol
}

// RotateAbout rotates v by q about axis with Rodrigues' formula. It agrees
// with AxisRotation(axis, q) applied to v but works on arrays, which keeps
// the hot derivative path free of allocations.
func RotateAbout(axis [3]float64, q float64, v [3]float64) [3]float64 {
	n := math.Sqrt(Dot(axis, axis))
	if n == 0 {
		return v
	}
	a := [3]float64{axis[0] / n, axis[1] / n, axis[2] / n}
	s, c := math.Sincos(q)
	axv := Cross(a, v)
	av := Dot(a, v) * (1 - c)
	return [3]float64{
		v[0]*c + axv[0]*s + a[0]*av,
		v[1]*c + axv[1]*s + a[1]*av,
		v[2]*c + axv[2]*s + a[2]*av,
	}
}

func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func Cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
