package plant

import (
	"fmt"

	"github.com/san-kum/ctrlsys/internal/control"
)

// Elevator is a carriage lifted against gravity. State is [height, v].
type Elevator struct {
	Mass     float64
	Gravity  float64
	Friction float64
}

func NewElevator() *Elevator {
	return &Elevator{
		Mass:     2.0,
		Gravity:  9.81,
		Friction: 1.0,
	}
}

func (e *Elevator) StateDim() int { return 2 }

func (e *Elevator) Derive(x State, u float64, t float64) State {
	v := x[1]
	return State{v, (u-e.Friction*v)/e.Mass - e.Gravity}
}

func (e *Elevator) Measure(x State, u float64, t float64) control.KineticState {
	return measureSecondOrder(e, x, u, t)
}

// HoldForce is the input that exactly balances gravity.
func (e *Elevator) HoldForce() float64 {
	return e.Mass * e.Gravity
}

func (e *Elevator) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":     e.Mass,
		"gravity":  e.Gravity,
		"friction": e.Friction,
	}
}

func (e *Elevator) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		return setPositive(name, &e.Mass, value)
	case "gravity":
		e.Gravity = value
	case "friction":
		e.Friction = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
