package plant

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/ctrlsys/internal/control"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Plant is a single-input system driven by a control output.
type Plant interface {
	Derive(x State, u float64, t float64) State
	StateDim() int
	// Measure reports position, velocity and acceleration as a sensor would.
	Measure(x State, u float64, t float64) control.KineticState
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Integrator advances a plant state by dt under a constant input.
type Integrator interface {
	Step(p Plant, x State, u, t, dt float64) State
}

var models = map[string]func() Plant{
	"pendulum":    func() Plant { return NewPendulum() },
	"flywheel":    func() Plant { return NewFlywheel() },
	"spring_mass": func() Plant { return NewSpringMass() },
	"elevator":    func() Plant { return NewElevator() },
	"turntable":   func() Plant { return NewTurntable() },
}

// Lookup returns a fresh plant by model name.
func Lookup(name string) (Plant, error) {
	fn, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("unknown plant model: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets every named parameter on a configurable plant.
func Apply(p Plant, params map[string]float64) error {
	if len(params) == 0 {
		return nil
	}
	c, ok := p.(Configurable)
	if !ok {
		return fmt.Errorf("plant %T has no tunable parameters", p)
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.SetParam(k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

// measureSecondOrder reads a [position, velocity] state.
func measureSecondOrder(p Plant, x State, u, t float64) control.KineticState {
	dx := p.Derive(x, u, t)
	return control.KineticState{Position: x[0], Velocity: x[1], Acceleration: dx[1]}
}

func setPositive(name string, dst *float64, value float64) error {
	if !(value > 0) {
		return fmt.Errorf("param %s must be positive, got %g", name, value)
	}
	*dst = value
	return nil
}
