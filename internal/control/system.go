package control

import "fmt"

// AxisConfig configures the feedback for one axis.
type AxisConfig struct {
	Coefficients     PIDCoefficients
	Law              Law
	ResetOnCrossover bool
	// Filters run on the raw measurement before error computation.
	Filters []Filter
}

// Config is the full, declarative description of a control system.
// A nil axis is not evaluated and contributes nothing.
type Config struct {
	Position     *AxisConfig
	Velocity     *AxisConfig
	Acceleration *AxisConfig
	// Angular wraps the position error to the shortest rotation.
	Angular     bool
	AngleType   AngleType
	Feedforward Feedforward
}

func (c *Config) axis(a Axis) *AxisConfig {
	switch a {
	case Position:
		return c.Position
	case Velocity:
		return c.Velocity
	case Acceleration:
		return c.Acceleration
	}
	return nil
}

type axisState struct {
	filters *Chain
	term    *FeedbackTerm
}

// ControlSystem evaluates configured feedback axes plus feedforward once
// per tick. The zero value is unbuilt; use New or Builder.Build.
type ControlSystem struct {
	axes      [numAxes]*axisState
	angular   bool
	angleType AngleType
	ff        Feedforward
	built     bool
}

// Output breaks one evaluation down by contribution.
type Output struct {
	Total       float64
	Axes        [3]float64
	Feedforward float64
	// Errors are the per-axis errors fed to the feedback terms.
	Errors [3]float64
}

// New validates cfg and returns a built control system.
func New(cfg Config) (*ControlSystem, error) {
	if cfg.Angular && cfg.Position == nil {
		return nil, fmt.Errorf("%w: angular mode requires a position axis", ErrInvalidConfig)
	}
	if cfg.AngleType < Radians || cfg.AngleType > Revolutions {
		return nil, fmt.Errorf("%w: unknown angle type %d", ErrInvalidConfig, cfg.AngleType)
	}
	if err := cfg.Feedforward.validate(); err != nil {
		return nil, err
	}

	cs := &ControlSystem{
		angular:   cfg.Angular,
		angleType: cfg.AngleType,
		ff:        cfg.Feedforward,
	}
	for a := Position; a < numAxes; a++ {
		ac := cfg.axis(a)
		if ac == nil {
			continue
		}
		if err := ac.Coefficients.validate(); err != nil {
			return nil, &AxisError{Axis: a, Wrapped: err}
		}
		if ac.Law < PID || ac.Law > BangBang {
			return nil, &AxisError{Axis: a, Wrapped: fmt.Errorf("%w: unknown law %d", ErrInvalidConfig, ac.Law)}
		}
		chain, err := NewChain(ac.Filters...)
		if err != nil {
			return nil, &AxisError{Axis: a, Wrapped: err}
		}
		term := NewFeedbackTerm(ac.Coefficients)
		term.Law = ac.Law
		term.ResetOnCrossover = ac.ResetOnCrossover
		cs.axes[a] = &axisState{filters: chain, term: term}
	}
	cs.built = true
	return cs, nil
}

// Evaluate returns the summed control output for one tick.
func (cs *ControlSystem) Evaluate(target, measured KineticState, dt float64) (float64, error) {
	out, err := cs.Step(target, measured, dt)
	if err != nil {
		return 0, err
	}
	return out.Total, nil
}

// Step is Evaluate with the per-axis breakdown. Either every axis succeeds
// and all state is committed, or nothing is.
func (cs *ControlSystem) Step(target, measured KineticState, dt float64) (Output, error) {
	var out Output
	if cs == nil || !cs.built {
		return out, ErrUnbuilt
	}
	if !(dt > 0) || !isFinite(dt) {
		return out, ErrInvalidTimestep
	}

	var staged [numAxes]feedbackStep
	for a := Position; a < numAxes; a++ {
		ax := cs.axes[a]
		if ax == nil {
			continue
		}
		t, m := target.Get(a), measured.Get(a)
		if !isFinite(t) || !isFinite(m) {
			return Output{}, &AxisError{Axis: a, Wrapped: ErrInvalidMeasurement}
		}
		filtered, err := ax.filters.run(m)
		if err != nil {
			return Output{}, &AxisError{Axis: a, Wrapped: err}
		}

		e := t - filtered
		if a == Position && cs.angular {
			e = Wrap(t, filtered, cs.angleType)
		}

		s, err := ax.term.step(e, dt)
		if err != nil {
			return Output{}, &AxisError{Axis: a, Wrapped: err}
		}
		staged[a] = s
		out.Axes[a] = s.out
		out.Errors[a] = e
		out.Total += s.out
	}

	if cs.ff.Kind != NoFeedforward {
		if !target.IsValid() {
			return Output{}, ErrInvalidMeasurement
		}
		out.Feedforward = cs.ff.Calculate(target)
		out.Total += out.Feedforward
	}

	for a := Position; a < numAxes; a++ {
		if ax := cs.axes[a]; ax != nil {
			ax.filters.commit()
			ax.term.commit(staged[a])
		}
	}
	return out, nil
}

// Reset clears every integrator and stateful filter.
func (cs *ControlSystem) Reset() error {
	if cs == nil || !cs.built {
		return ErrUnbuilt
	}
	for _, ax := range cs.axes {
		if ax == nil {
			continue
		}
		ax.filters.Reset()
		ax.term.Reset()
	}
	return nil
}

// Axes lists the configured axes in evaluation order.
func (cs *ControlSystem) Axes() []Axis {
	if cs == nil {
		return nil
	}
	axes := make([]Axis, 0, numAxes)
	for a := Position; a < numAxes; a++ {
		if cs.axes[a] != nil {
			axes = append(axes, a)
		}
	}
	return axes
}

// Angular reports whether position error is wrapped, and in which unit.
func (cs *ControlSystem) Angular() (AngleType, bool) {
	return cs.angleType, cs.angular
}

// Term exposes an axis' feedback term, or nil if the axis is unconfigured.
func (cs *ControlSystem) Term(a Axis) *FeedbackTerm {
	if cs == nil || a < Position || a >= numAxes || cs.axes[a] == nil {
		return nil
	}
	return cs.axes[a].term
}
