// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//   - [Controller]: feedback controller interface
//   - [Simulator]: orchestrates simulation runs
//
// # Example
//
//	model := mbs.NewPendulum(mbs.DefaultParams())
//	s := dynamo.New(model, integrators.NewRK4(), control.NewNone(1))
//	result, _ := s.Run(ctx, dynamo.State{1, 0}, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel simulations over
// several initial states use [Sweep], which builds one simulator per run.
package dynamo
