package plant

import (
	"fmt"

	"github.com/san-kum/ctrlsys/internal/control"
)

// Flywheel is a DC motor spinning an inertia. The input is motor voltage.
// State is [theta, omega] in radians.
type Flywheel struct {
	Inertia  float64
	Friction float64
	// TorqueGain converts input volts to shaft torque.
	TorqueGain float64
}

func NewFlywheel() *Flywheel {
	return &Flywheel{
		Inertia:    0.02,
		Friction:   0.05,
		TorqueGain: 0.3,
	}
}

func (f *Flywheel) StateDim() int { return 2 }

func (f *Flywheel) Derive(x State, u float64, t float64) State {
	omega := x[1]
	return State{omega, (f.TorqueGain*u - f.Friction*omega) / f.Inertia}
}

func (f *Flywheel) Measure(x State, u float64, t float64) control.KineticState {
	return measureSecondOrder(f, x, u, t)
}

func (f *Flywheel) GetParams() map[string]float64 {
	return map[string]float64{
		"inertia":     f.Inertia,
		"friction":    f.Friction,
		"torque_gain": f.TorqueGain,
	}
}

func (f *Flywheel) SetParam(name string, value float64) error {
	switch name {
	case "inertia":
		return setPositive(name, &f.Inertia, value)
	case "friction":
		f.Friction = value
	case "torque_gain":
		f.TorqueGain = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
