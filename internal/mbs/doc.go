// Package mbs models a rigid body hanging from a single revolute joint.
//
// The model mirrors what a multibody code generator emits for such a system:
// a state-derivative function ([Pendulum.DerState]), a visualisation function
// returning the pose of the body's box ([Pendulum.Visual]) and a sensor
// function ([Pendulum.Sensors]). The state is [q, qd], the joint angle and
// its rate.
//
// The body frame sits at the centre of gravity; the joint attaches to a link
// frame Length/2 along the body z axis. With the default parameters the body
// hangs straight down at q = 0 and
//
//	qdd = -m g (l/2) sin q / (I + m (l/2)^2) = -14.715 sin q
//
// [Pendulum] also satisfies [dynamo.System], [dynamo.Hamiltonian] and
// [dynamo.Configurable], so it can be stepped by any integrator.
package mbs
