package control

import (
	"fmt"
	"math"
)

// FeedforwardKind selects the feedforward model.
type FeedforwardKind int

const (
	NoFeedforward FeedforwardKind = iota
	// BasicFeedforward: kV*v + kA*a + kS*sign(v).
	BasicFeedforward
	// ElevatorFeedforward adds a constant gravity term kG.
	ElevatorFeedforward
	// ArmFeedforward adds kG*cos(position), position in radians.
	ArmFeedforward
)

func ParseFeedforwardKind(s string) (FeedforwardKind, error) {
	switch s {
	case "", "none":
		return NoFeedforward, nil
	case "basic":
		return BasicFeedforward, nil
	case "elevator":
		return ElevatorFeedforward, nil
	case "arm":
		return ArmFeedforward, nil
	}
	return NoFeedforward, fmt.Errorf("%w: unknown feedforward %q", ErrInvalidConfig, s)
}

func (k FeedforwardKind) String() string {
	switch k {
	case NoFeedforward:
		return "none"
	case BasicFeedforward:
		return "basic"
	case ElevatorFeedforward:
		return "elevator"
	case ArmFeedforward:
		return "arm"
	}
	return "unknown"
}

// Feedforward computes an output term from the target state alone.
type Feedforward struct {
	Kind FeedforwardKind
	KG   float64
	KV   float64
	KA   float64
	KS   float64
}

func (f Feedforward) validate() error {
	if f.Kind < NoFeedforward || f.Kind > ArmFeedforward {
		return fmt.Errorf("%w: unknown feedforward kind %d", ErrInvalidConfig, f.Kind)
	}
	for _, v := range []float64{f.KG, f.KV, f.KA, f.KS} {
		if !isFinite(v) {
			return fmt.Errorf("%w: non-finite feedforward gain", ErrInvalidConfig)
		}
	}
	return nil
}

// Calculate returns the feedforward output for a reference state.
func (f Feedforward) Calculate(ref KineticState) float64 {
	base := f.KV*ref.Velocity + f.KA*ref.Acceleration + f.KS*sign(ref.Velocity)
	switch f.Kind {
	case BasicFeedforward:
		return base
	case ElevatorFeedforward:
		return f.KG + base
	case ArmFeedforward:
		return f.KG*math.Cos(ref.Position) + base
	}
	return 0
}
