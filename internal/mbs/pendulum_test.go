package mbs_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/kinematics"
	"github.com/san-kum/mbsim/internal/linalg"
	"github.com/san-kum/mbsim/internal/mbs"
	"gonum.org/v1/gonum/mat"
)

// qdd = -m g d sin q / (I + m d^2) with d = l/2
const defaultGain = 9.81 * 0.5 / (1.0/12 + 0.25)

var _ = Describe("Pendulum", func() {
	var model *mbs.Pendulum

	BeforeEach(func() {
		model = mbs.Default()
	})

	Describe("DerState", func() {
		It("returns a two-element derivative for the released state [1, 0]", func() {
			yd, err := model.DerState(0, dynamo.State{1, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(yd).To(HaveLen(2))
			Expect(yd[0]).To(Equal(0.0))
			Expect(yd[1]).To(BeNumerically("~", -defaultGain*math.Sin(1), 1e-12))
		})

		It("gives -14.715 sin q with the default parameters", func() {
			Expect(defaultGain).To(BeNumerically("~", 14.715, 1e-12))
		})

		It("is at rest in the hanging equilibrium", func() {
			yd, err := model.DerState(0, dynamo.State{0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(yd[0]).To(BeZero())
			Expect(yd[1]).To(BeNumerically("~", 0, 1e-15))
		})

		It("returns identical values for identical inputs", func() {
			y := dynamo.State{0.1, 0}
			a, err := model.DerState(0, y)
			Expect(err).NotTo(HaveOccurred())
			b, err := model.DerState(0, y)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b))
		})

		It("does not modify its input", func() {
			y := dynamo.State{0.4, -1.2}
			_, err := model.DerState(3, y)
			Expect(err).NotTo(HaveOccurred())
			Expect(y).To(Equal(dynamo.State{0.4, -1.2}))
		})

		It("does not depend on time", func() {
			a, _ := model.DerState(0, dynamo.State{0.3, 0.2})
			b, _ := model.DerState(17.5, dynamo.State{0.3, 0.2})
			Expect(a).To(Equal(b))
		})

		DescribeTable("rejects malformed states",
			func(y dynamo.State, want error) {
				_, err := model.DerState(0, y)
				Expect(err).To(MatchError(want))
			},
			Entry("empty", dynamo.State{}, dynamo.ErrDimensionMismatch),
			Entry("too short", dynamo.State{1}, dynamo.ErrDimensionMismatch),
			Entry("too long", dynamo.State{1, 0, 0}, dynamo.ErrDimensionMismatch),
			Entry("NaN", dynamo.State{math.NaN(), 0}, dynamo.ErrInvalidState),
			Entry("Inf", dynamo.State{0, math.Inf(1)}, dynamo.ErrInvalidState),
		)

		It("applies damping and joint torque", func() {
			p := mbs.DefaultParams()
			p.Damping = 0.5
			damped, err := mbs.NewPendulum(p)
			Expect(err).NotTo(HaveOccurred())

			x := damped.Derive(dynamo.State{0, 2}, dynamo.Control{0.3}, 0)
			Expect(x[1]).To(BeNumerically("~", (-0.5*2+0.3)/damped.JointInertia(), 1e-12))
		})
	})

	Describe("Visual", func() {
		It("hangs the box below the pivot at q = 0", func() {
			r, T, err := model.Visual(dynamo.State{0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(linalg.ToSlice(r)).To(Equal([]float64{0, 0, -0.5}))
			Expect(mat.Equal(T, kinematics.Identity())).To(BeTrue())
		})

		It("keeps zero position components positive at q = 0", func() {
			r, _, err := model.Visual(dynamo.State{0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(math.Signbit(r.AtVec(0))).To(BeFalse())
			Expect(math.Signbit(r.AtVec(1))).To(BeFalse())
			Expect(linalg.FormatVector(r)).NotTo(ContainSubstring("-0 "))
		})

		It("returns a (3,) position and a (3,3) orientation for the derivative of [0.1, 0]", func() {
			yd, err := model.DerState(0, dynamo.State{0.1, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(yd).To(HaveLen(2))

			r, T, err := model.Visual(yd)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Len()).To(Equal(3))
			rows, cols := T.Dims()
			Expect([]int{rows, cols}).To(Equal([]int{3, 3}))
			Expect(linalg.AllFinite(r)).To(BeTrue())
			Expect(linalg.AllFinite(T)).To(BeTrue())

			// the derivative's first entry is the angular velocity, zero here
			Expect(linalg.ToSlice(r)).To(Equal([]float64{0, 0, -0.5}))
		})

		It("follows Ry(q) for a swung body", func() {
			q := 0.8
			r, T, err := model.Visual(dynamo.State{q, 5})
			Expect(err).NotTo(HaveOccurred())

			Expect(mat.EqualApprox(T, kinematics.Ry(q), 1e-14)).To(BeTrue())
			Expect(r.AtVec(0)).To(BeNumerically("~", -0.5*math.Sin(q), 1e-14))
			Expect(r.AtVec(1)).To(BeNumerically("~", 0, 1e-14))
			Expect(r.AtVec(2)).To(BeNumerically("~", -0.5*math.Cos(q), 1e-14))
			Expect(kinematics.IsRotation(T, 1e-12)).To(BeTrue())
		})

		It("rejects a state of the wrong size", func() {
			_, _, err := model.Visual(dynamo.State{0, 0, 0})
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("places the box corners around the pose", func() {
			r, T, _ := model.Visual(dynamo.State{0, 0})
			corners := model.BoxCorners(r, T)

			minZ, maxZ := math.Inf(1), math.Inf(-1)
			for _, c := range corners {
				minZ = math.Min(minZ, c[2])
				maxZ = math.Max(maxZ, c[2])
			}
			Expect(minZ).To(BeNumerically("~", -1.0, 1e-12))
			Expect(maxZ).To(BeNumerically("~", 0.0, 1e-12))
		})
	})

	Describe("Sensors", func() {
		It("reports the joint state, pose and energies", func() {
			y := dynamo.State{0.5, 1.5}
			s, err := model.Sensors(y)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Angle).To(Equal(0.5))
			Expect(s.Velocity).To(Equal(1.5))
			Expect(s.Energy()).To(BeNumerically("~", model.Energy(y), 1e-12))
			Expect(s.Kinetic).To(BeNumerically("~", 0.5*model.JointInertia()*1.5*1.5, 1e-12))
			Expect(s.Potential).To(BeNumerically("~", -9.81*0.5*math.Cos(0.5), 1e-12))
			Expect(s.Quaternion.Jmag).To(BeNumerically("~", math.Sin(0.25), 1e-12))
			Expect(s.Position.AtVec(2)).To(BeNumerically("~", -0.5*math.Cos(0.5), 1e-14))
		})

		It("propagates validation errors", func() {
			_, err := model.Sensors(dynamo.State{1})
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})
	})

	Describe("energy", func() {
		It("is conserved by the equations of motion", func() {
			// dE/dt = M qd qdd + dV/dq qd must vanish without damping
			for _, q := range []float64{-2, -0.3, 0.1, 1, 2.9} {
				x := dynamo.State{q, 0.7}
				dx := model.Derive(x, nil, 0)

				h := 1e-6
				dV := (model.PotentialEnergy(dynamo.State{q + h, 0}) - model.PotentialEnergy(dynamo.State{q - h, 0})) / (2 * h)
				dEdt := model.JointInertia()*x[1]*dx[1] + dV*x[1]
				Expect(dEdt).To(BeNumerically("~", 0, 1e-8))
			}
		})
	})

	Describe("parameters", func() {
		It("exposes the small-angle period", func() {
			want := 2 * math.Pi * math.Sqrt((1.0/12+0.25)/(9.81*0.5))
			Expect(model.SmallAnglePeriod()).To(BeNumerically("~", want, 1e-12))
		})

		It("has no restoring torque without gravity", func() {
			Expect(model.SetParam("gravity", 0)).To(Succeed())
			Expect(math.IsInf(model.SmallAnglePeriod(), 1)).To(BeTrue())
		})

		It("round-trips through GetParams and SetParam", func() {
			Expect(model.SetParam("length", 2)).To(Succeed())
			Expect(model.GetParams()["length"]).To(Equal(2.0))

			// d = 1, M = 1/12 + 1
			yd, _ := model.DerState(0, dynamo.State{math.Pi / 2, 0})
			Expect(yd[1]).To(BeNumerically("~", -9.81/(1.0/12+1), 1e-12))
		})

		It("rejects unknown or out-of-range values and keeps the old ones", func() {
			Expect(model.SetParam("colour", 1)).To(MatchError(dynamo.ErrUnknownParameter))
			Expect(model.SetParam("mass", -1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(model.GetParams()["mass"]).To(Equal(1.0))
		})

		DescribeTable("validates parameter sets",
			func(mutate func(*mbs.Params)) {
				p := mbs.DefaultParams()
				mutate(&p)
				_, err := mbs.NewPendulum(p)
				Expect(err).To(MatchError(dynamo.ErrParameterBounds))
			},
			Entry("zero mass", func(p *mbs.Params) { p.Mass = 0 }),
			Entry("NaN length", func(p *mbs.Params) { p.Length = math.NaN() }),
			Entry("negative inertia", func(p *mbs.Params) { p.Inertia = -1 }),
			Entry("non-unit gravity direction", func(p *mbs.Params) { p.GravityDir = [3]float64{0, 0, -2} }),
			Entry("zero axis", func(p *mbs.Params) { p.Axis = [3]float64{} }),
			Entry("negative box", func(p *mbs.Params) { p.Box.Height = -1 }),
		)

		It("swings the same way about the x axis", func() {
			p := mbs.DefaultParams()
			p.Axis = kinematics.AxisX
			p.GravityDir = [3]float64{0, 0, -1}
			m, err := mbs.NewPendulum(p)
			Expect(err).NotTo(HaveOccurred())

			yd, err := m.DerState(0, dynamo.State{0.3, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(yd[1]).To(BeNumerically("~", -defaultGain*math.Sin(0.3), 1e-12))
		})
	})
})
