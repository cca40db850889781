package control

import "fmt"

// Builder collects a Config fluently. Filters given for an axis without
// feedback are dropped with that axis.
type Builder struct {
	cfg     Config
	filters [numAxes][]Filter
	set     [numAxes]bool
	err     error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Feedback configures an axis with a feedback law and gains. An unknown
// axis is reported by Build.
func (b *Builder) Feedback(a Axis, law Law, c PIDCoefficients) *Builder {
	if !b.validAxis(a) {
		return b
	}
	ac := b.axis(a)
	ac.Law = law
	ac.Coefficients = c
	b.set[a] = true
	return b
}

func (b *Builder) PosPID(c PIDCoefficients) *Builder   { return b.Feedback(Position, PID, c) }
func (b *Builder) VelPID(c PIDCoefficients) *Builder   { return b.Feedback(Velocity, PID, c) }
func (b *Builder) AccelPID(c PIDCoefficients) *Builder { return b.Feedback(Acceleration, PID, c) }

func (b *Builder) PosSquID(c PIDCoefficients) *Builder { return b.Feedback(Position, SquID, c) }
func (b *Builder) VelSquID(c PIDCoefficients) *Builder { return b.Feedback(Velocity, SquID, c) }

// ResetOnCrossover enables integral reset on error sign change for an axis.
func (b *Builder) ResetOnCrossover(a Axis) *Builder {
	if b.validAxis(a) {
		b.axis(a).ResetOnCrossover = true
	}
	return b
}

func (b *Builder) PosFilter(f ...Filter) *Builder   { return b.filter(Position, f) }
func (b *Builder) VelFilter(f ...Filter) *Builder   { return b.filter(Velocity, f) }
func (b *Builder) AccelFilter(f ...Filter) *Builder { return b.filter(Acceleration, f) }

// Angular wraps position error in the given unit. Any configure funcs run
// against the same builder, so position feedback can be declared inline.
func (b *Builder) Angular(t AngleType, configure ...func(*Builder)) *Builder {
	b.cfg.Angular = true
	b.cfg.AngleType = t
	for _, fn := range configure {
		fn(b)
	}
	return b
}

func (b *Builder) Feedforward(f Feedforward) *Builder {
	b.cfg.Feedforward = f
	return b
}

// Config returns the collected configuration.
func (b *Builder) Config() Config {
	cfg := b.cfg
	cfg.Position, cfg.Velocity, cfg.Acceleration = nil, nil, nil
	for a := Position; a < numAxes; a++ {
		if !b.set[a] {
			continue
		}
		ac := *b.axis(a)
		ac.Filters = append([]Filter(nil), b.filters[a]...)
		switch a {
		case Position:
			cfg.Position = &ac
		case Velocity:
			cfg.Velocity = &ac
		case Acceleration:
			cfg.Acceleration = &ac
		}
	}
	return cfg
}

// Build validates and freezes the configuration.
func (b *Builder) Build() (*ControlSystem, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.Config())
}

func (b *Builder) validAxis(a Axis) bool {
	if a >= Position && a < numAxes {
		return true
	}
	if b.err == nil {
		b.err = fmt.Errorf("%w: unknown axis %d", ErrInvalidConfig, int(a))
	}
	return false
}

func (b *Builder) filter(a Axis, f []Filter) *Builder {
	b.filters[a] = append(b.filters[a], f...)
	return b
}

func (b *Builder) axis(a Axis) *AxisConfig {
	var p **AxisConfig
	switch a {
	case Velocity:
		p = &b.cfg.Velocity
	case Acceleration:
		p = &b.cfg.Acceleration
	default:
		p = &b.cfg.Position
	}
	if *p == nil {
		*p = &AxisConfig{}
	}
	return *p
}
