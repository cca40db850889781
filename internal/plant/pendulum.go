package plant

import (
	"fmt"
	"math"

	"github.com/san-kum/ctrlsys/internal/control"
)

// Pendulum is a rigid pendulum driven by a torque at its pivot.
// State is [theta, omega], theta in radians from hanging straight down.
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *Pendulum) StateDim() int { return 2 }

func (p *Pendulum) Derive(x State, u float64, t float64) State {
	theta, omega := x[0], x[1]
	alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta) + u) / (p.Mass * p.Length * p.Length)
	return State{omega, alpha}
}

func (p *Pendulum) Measure(x State, u float64, t float64) control.KineticState {
	return measureSecondOrder(p, x, u, t)
}

// Energy is kinetic plus potential energy relative to the bottom.
func (p *Pendulum) Energy(x State) float64 {
	v := p.Length * x[1]
	return 0.5*p.Mass*v*v + p.Mass*p.Gravity*p.Length*(1.0-math.Cos(x[0]))
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		return setPositive(name, &p.Mass, value)
	case "length":
		return setPositive(name, &p.Length, value)
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
