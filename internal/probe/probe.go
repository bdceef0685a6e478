// Package probe evaluates a model once at a given state and prints the
// derivative and the resulting body pose.
package probe

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// Model is the pair of generated-style entry points the probe needs.
type Model interface {
	DerState(t float64, y dynamo.State) (dynamo.State, error)
	Visual(y dynamo.State) (*mat.VecDense, *mat.Dense, error)
}

// Fragment is one historic harness invocation.
type Fragment struct {
	Name   string
	Time   float64
	State  dynamo.State
	Visual bool
}

// Fragments returns the two harness invocations: the released pendulum at
// one radian, which prints only the derivative, and the small swing, whose
// derivative is also passed through Visual.
func Fragments() []Fragment {
	return []Fragment{
		{Name: "derivative", Time: 0, State: dynamo.State{1, 0}},
		{Name: "pose", Time: 0, State: dynamo.State{0.1, 0}, Visual: true},
	}
}

type Report struct {
	Time        float64
	State       dynamo.State
	Derivative  dynamo.State
	Position    *mat.VecDense
	Orientation *mat.Dense
}

// Run evaluates the derivative of y0 at t and then the pose for that
// derivative vector, mirroring how the harness chains the two calls.
func Run(m Model, t float64, y0 dynamo.State) (*Report, error) {
	yd, err := m.DerState(t, y0)
	if err != nil {
		return nil, err
	}

	r, T, err := m.Visual(yd)
	if err != nil {
		return nil, err
	}

	return &Report{
		Time:        t,
		State:       y0.Clone(),
		Derivative:  yd,
		Position:    r,
		Orientation: T,
	}, nil
}

// RunFragment runs f and writes its output to w.
func RunFragment(w io.Writer, m Model, f Fragment) error {
	if !f.Visual {
		yd, err := m.DerState(f.Time, f.State)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, formatDerivative(yd))
		return err
	}

	rep, err := Run(m, f.Time, f.State)
	if err != nil {
		return err
	}
	_, err = rep.WriteTo(w)
	return err
}

// WriteTo prints one derivative component per line followed by the
// position vector and the orientation matrix.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(formatDerivative(r.Derivative))
	if r.Position != nil {
		fmt.Fprintf(&b, "r = %s\n", linalg.FormatVector(r.Position))
	}
	if r.Orientation != nil {
		fmt.Fprintf(&b, "T = %s\n", linalg.FormatMatrix(r.Orientation, "    "))
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func formatDerivative(yd dynamo.State) string {
	var b strings.Builder
	for _, v := range yd {
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte('\n')
	}
	return b.String()
}
