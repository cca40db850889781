package plant

import (
	"fmt"

	"github.com/san-kum/ctrlsys/internal/control"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

// SpringMass is a damped mass on a spring pushed by an external force.
// State is [x, v].
type SpringMass struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

func (s *SpringMass) StateDim() int { return 2 }

func (s *SpringMass) Derive(x State, u float64, t float64) State {
	pos, vel := x[0], x[1]
	force := -s.Stiffness*pos - s.Damping*vel + u
	return State{vel, force / s.Mass}
}

func (s *SpringMass) Measure(x State, u float64, t float64) control.KineticState {
	return measureSecondOrder(s, x, u, t)
}

func (s *SpringMass) Energy(x State) float64 {
	return 0.5*s.Mass*x[1]*x[1] + 0.5*s.Stiffness*x[0]*x[0]
}

func (s *SpringMass) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":      s.Mass,
		"stiffness": s.Stiffness,
		"damping":   s.Damping,
	}
}

func (s *SpringMass) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		return setPositive(name, &s.Mass, value)
	case "stiffness":
		s.Stiffness = value
	case "damping":
		s.Damping = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
