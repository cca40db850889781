// Package plant provides simulated physical systems that a control
// system can be closed around.
//
// Each model integrates dX/dt = f(X, u, t) for a single actuator input u
// and reports what an encoder would measure as a [control.KineticState]:
//
//   - [Pendulum]: torque-driven pendulum (angular position)
//   - [Flywheel]: DC motor and inertia (velocity)
//   - [SpringMass]: damped mass on a spring (position)
//   - [Elevator]: mass lifted against gravity (position + gravity feedforward)
//   - [Turntable]: frictional rotary stage measured in degrees (angular wrap)
//
// Models implement [Configurable] so config files can override physical
// parameters by name.
package plant
