// Package control provides joint torque controllers for the pendulum.
//
// Controllers implement the [dynamo.Controller] interface:
//
//   - [PID]: proportional-integral-derivative on the joint angle
//   - [StateFeedback]: linear state feedback u = -K (x - target)
//   - [None]: zero torque
//
// # Usage
//
//	pid := control.NewPID(10, 0.1, 5, 0) // Kp, Ki, Kd, setpoint
//	s := dynamo.New(model, integrators.NewRK4(), pid)
//
// PID implements [dynamo.Configurable] for tuning between runs.
package control
