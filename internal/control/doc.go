// Package control provides a composable feedback control engine.
//
// A [ControlSystem] maps a target and a measured [KineticState] to a
// single actuator output once per tick. It is assembled from:
//
//   - [FeedbackTerm]: PID (or SquID / bang-bang) law for one axis
//   - [Chain]: ordered measurement filters ([LowPass], [Custom])
//   - [Wrap]: shortest-path angular error for rotational position
//   - [Feedforward]: optional output term computed from the target
//
// # Usage
//
//	cs, err := control.NewBuilder().
//		PosFilter(control.LowPass(0.5), control.CustomFunc(ticksToRadians)).
//		Angular(control.Radians).
//		PosPID(control.PIDCoefficients{KP: 1, KI: 0.1, KD: 0.01}).
//		Build()
//	out, err := cs.Evaluate(target, measured, dt)
//
// The engine owns no goroutine or timer: an external loop calls
// Evaluate once per tick. A ControlSystem mutates its integrators and
// filter state on every call and is not safe for concurrent use.
package control
