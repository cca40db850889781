package sim

import (
	"fmt"

	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/plant"
)

// Sample is one closed-loop tick as seen by metrics and observers.
type Sample struct {
	Time     float64
	Target   control.KineticState
	Measured control.KineticState
	Output   float64
	// Error is the tracking error of the primary (first configured) axis,
	// after filtering and angular wrapping.
	Error float64
	// Axis is the primary axis that Error and the tracked traces refer to.
	Axis   control.Axis
	State  plant.State
	Failed bool
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

// Setpoint produces the reference state at time t.
type Setpoint func(t float64) control.KineticState

// Constant returns a Setpoint holding target for the whole run.
func Constant(target control.KineticState) Setpoint {
	return func(float64) control.KineticState { return target }
}

// Step returns a Setpoint that jumps from before to after at time at.
func Step(before, after control.KineticState, at float64) Setpoint {
	return func(t float64) control.KineticState {
		if t < at {
			return before
		}
		return after
	}
}

type Config struct {
	Dt       float64
	Duration float64
	Target   Setpoint
	// Noise is the standard deviation of gaussian noise added to the
	// measured position and velocity.
	Noise float64
	Seed  int64
	// HoldOnError keeps the last good output when an evaluation fails
	// instead of aborting the run.
	HoldOnError bool
}

type Result struct {
	Times      []float64
	Samples    []Sample
	States     []plant.State
	Metrics    map[string]float64
	Failures   int
	StepsTaken int
}

// Errors returns the tracking error trace.
func (r *Result) Errors() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Error
	}
	return out
}

// Outputs returns the controller output trace.
func (r *Result) Outputs() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Output
	}
	return out
}

// Targets returns the reference trace of the primary axis.
func (r *Result) Targets() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Target.Get(s.Axis)
	}
	return out
}

// Measured returns the measurement trace of the primary axis.
func (r *Result) Measured() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Measured.Get(s.Axis)
	}
	return out
}

type TickError struct {
	Time float64
	Step int
	Err  error
}

func (e TickError) Error() string {
	return fmt.Sprintf("tick %d at t=%.4f: %v", e.Step, e.Time, e.Err)
}

func (e TickError) Unwrap() error {
	return e.Err
}

// Waypoint switches the reference to Target from time At onward.
type Waypoint struct {
	At     float64              `yaml:"at"`
	Target control.KineticState `yaml:"target"`
}

// Schedule returns a piecewise-constant Setpoint. Before the first
// waypoint the reference is initial. Waypoints must be sorted by At.
func Schedule(initial control.KineticState, points []Waypoint) Setpoint {
	return func(t float64) control.KineticState {
		ref := initial
		for _, p := range points {
			if t < p.At {
				break
			}
			ref = p.Target
		}
		return ref
	}
}
