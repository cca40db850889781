package control

import "math"

// KineticState holds position, velocity and acceleration of one degree of freedom.
type KineticState struct {
	Position     float64 `json:"position" yaml:"position"`
	Velocity     float64 `json:"velocity" yaml:"velocity"`
	Acceleration float64 `json:"acceleration" yaml:"acceleration"`
}

func (k KineticState) Add(o KineticState) KineticState {
	return KineticState{k.Position + o.Position, k.Velocity + o.Velocity, k.Acceleration + o.Acceleration}
}

func (k KineticState) Sub(o KineticState) KineticState {
	return KineticState{k.Position - o.Position, k.Velocity - o.Velocity, k.Acceleration - o.Acceleration}
}

func (k KineticState) Scale(f float64) KineticState {
	return KineticState{k.Position * f, k.Velocity * f, k.Acceleration * f}
}

// Get returns the component for an axis.
func (k KineticState) Get(a Axis) float64 {
	switch a {
	case Velocity:
		return k.Velocity
	case Acceleration:
		return k.Acceleration
	default:
		return k.Position
	}
}

func (k KineticState) IsValid() bool {
	return isFinite(k.Position) && isFinite(k.Velocity) && isFinite(k.Acceleration)
}

// Axis is one independent feedback dimension of a control system.
type Axis int

const (
	Position Axis = iota
	Velocity
	Acceleration
	numAxes
)

func (a Axis) String() string {
	switch a {
	case Position:
		return "position"
	case Velocity:
		return "velocity"
	case Acceleration:
		return "acceleration"
	}
	return "unknown"
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
