// Package linalg holds the dense vector and matrix helpers the model and the
// probe harness share: construction of zero or filled values, conversion from
// simulation states, finiteness checks and plain-text formatting. Storage and
// arithmetic are gonum's.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Zeros returns a length-n vector of zeros.
func Zeros(n int) *mat.VecDense {
	return mat.NewVecDense(n, nil)
}

// Filled returns a length-n vector with every entry set to v.
func Filled(n int, v float64) *mat.VecDense {
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return mat.NewVecDense(n, data)
}

// DenseFilled returns an r x c matrix with every entry set to v.
func DenseFilled(r, c int, v float64) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(r, c, data)
}

// FromSlice copies xs into a new vector so later writes to xs do not leak in.
func FromSlice(xs []float64) *mat.VecDense {
	data := make([]float64, len(xs))
	copy(data, xs)
	return mat.NewVecDense(len(data), data)
}

// ToSlice copies the entries of v into a new slice.
func ToSlice(v mat.Vector) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// AllFinite reports whether every entry of m is neither NaN nor Inf.
func AllFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// FormatVector renders v as a single bracketed row.
func FormatVector(v mat.Vector) string {
	return fmt.Sprintf("%v", mat.Formatted(v.T(), mat.Squeeze()))
}

// FormatMatrix renders m one row per line, each line starting with prefix
// after the first.
func FormatMatrix(m mat.Matrix, prefix string) string {
	return fmt.Sprintf("%v", mat.Formatted(m, mat.Prefix(prefix), mat.Squeeze()))
}
