package sim

import (
	"math/rand"

	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/plant"
)

// Loop closes a control system around a plant: measure, evaluate,
// actuate, integrate. It is single-owner, like the ControlSystem it drives.
type Loop struct {
	plant      plant.Plant
	integrator plant.Integrator
	system     *control.ControlSystem
	primary    control.Axis

	x     plant.State
	t     float64
	lastU float64
	hold  bool

	noise float64
	rng   *rand.Rand
}

func NewLoop(p plant.Plant, integ plant.Integrator, cs *control.ControlSystem, x0 plant.State) *Loop {
	return &Loop{
		plant:      p,
		integrator: integ,
		system:     cs,
		primary:    primaryAxis(cs),
		x:          x0.Clone(),
	}
}

// SetNoise adds gaussian measurement noise with the given standard deviation.
func (l *Loop) SetNoise(sigma float64, seed int64) {
	l.noise = sigma
	l.rng = rand.New(rand.NewSource(seed))
}

// SetHoldOnError makes a failed tick still advance the plant, driven by
// the last good output. Without it a failed tick leaves the plant and
// the clock untouched.
func (l *Loop) SetHoldOnError(hold bool) { l.hold = hold }

// SetSystem swaps the control system driven by the loop. The plant state,
// clock, held output and noise source carry over.
func (l *Loop) SetSystem(cs *control.ControlSystem) {
	l.system = cs
	l.primary = primaryAxis(cs)
}

func primaryAxis(cs *control.ControlSystem) control.Axis {
	if axes := cs.Axes(); len(axes) > 0 {
		return axes[0]
	}
	return control.Position
}

func (l *Loop) State() plant.State { return l.x.Clone() }
func (l *Loop) Time() float64      { return l.t }

// Tick evaluates the control system once and advances the plant by dt.
// When the evaluation fails the sample is marked failed, carries the
// previous output and is returned alongside the error. The plant only
// advances on a failed tick when holding is enabled.
func (l *Loop) Tick(target control.KineticState, dt float64) (Sample, error) {
	measured := l.plant.Measure(l.x, l.lastU, l.t)
	if l.noise > 0 && l.rng != nil {
		measured.Position += l.rng.NormFloat64() * l.noise
		measured.Velocity += l.rng.NormFloat64() * l.noise
	}

	s := Sample{
		Time:     l.t,
		Target:   target,
		Measured: measured,
		Axis:     l.primary,
		State:    l.x.Clone(),
	}

	out, err := l.system.Step(target, measured, dt)
	if err != nil {
		s.Failed = true
		s.Output = l.lastU
		s.Error = l.rawError(target, measured)
		if !l.hold {
			return s, err
		}
	} else {
		s.Output = out.Total
		s.Error = out.Errors[l.primary]
		l.lastU = out.Total
	}

	if dt > 0 {
		l.x = l.integrator.Step(l.plant, l.x, s.Output, l.t, dt)
		l.t += dt
	}
	return s, err
}

// rawError is the unfiltered tracking error of the primary axis, wrapped
// when the position axis is angular.
func (l *Loop) rawError(target, measured control.KineticState) float64 {
	t, m := target.Get(l.primary), measured.Get(l.primary)
	if unit, ok := l.system.Angular(); ok && l.primary == control.Position {
		return control.Wrap(t, m, unit)
	}
	return t - m
}
