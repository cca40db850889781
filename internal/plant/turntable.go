package plant

import (
	"fmt"
	"math"

	"github.com/san-kum/ctrlsys/internal/control"
)

// Turntable is a rotary stage whose encoder reports heading in degrees,
// wrapped to [0, 360). State is [heading, rate] in degrees, unwrapped.
type Turntable struct {
	Inertia  float64
	Friction float64
	Gain     float64
}

func NewTurntable() *Turntable {
	return &Turntable{
		Inertia:  1.0,
		Friction: 2.0,
		Gain:     50.0,
	}
}

func (tt *Turntable) StateDim() int { return 2 }

func (tt *Turntable) Derive(x State, u float64, t float64) State {
	rate := x[1]
	return State{rate, (tt.Gain*u - tt.Friction*rate) / tt.Inertia}
}

func (tt *Turntable) Measure(x State, u float64, t float64) control.KineticState {
	k := measureSecondOrder(tt, x, u, t)
	k.Position = math.Mod(k.Position, 360)
	if k.Position < 0 {
		k.Position += 360
	}
	return k
}

func (tt *Turntable) GetParams() map[string]float64 {
	return map[string]float64{
		"inertia":  tt.Inertia,
		"friction": tt.Friction,
		"gain":     tt.Gain,
	}
}

func (tt *Turntable) SetParam(name string, value float64) error {
	switch name {
	case "inertia":
		return setPositive(name, &tt.Inertia, value)
	case "friction":
		tt.Friction = value
	case "gain":
		tt.Gain = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
