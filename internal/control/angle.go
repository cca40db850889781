package control

import (
	"fmt"
	"math"
)

// AngleType selects the unit, and so the wrap modulus, of angular error.
type AngleType int

const (
	Radians AngleType = iota
	Degrees
	Revolutions
)

// Modulus is one full turn in this unit.
func (a AngleType) Modulus() float64 {
	switch a {
	case Degrees:
		return 360
	case Revolutions:
		return 1
	default:
		return 2 * math.Pi
	}
}

func (a AngleType) String() string {
	switch a {
	case Radians:
		return "radians"
	case Degrees:
		return "degrees"
	case Revolutions:
		return "revolutions"
	}
	return "unknown"
}

// ParseAngleType maps a config name to an AngleType.
func ParseAngleType(s string) (AngleType, error) {
	switch s {
	case "rad", "radians":
		return Radians, nil
	case "deg", "degrees":
		return Degrees, nil
	case "rev", "revolutions":
		return Revolutions, nil
	}
	return Radians, fmt.Errorf("%w: unknown angle type %q", ErrInvalidConfig, s)
}

// Wrap returns target-measured as the shortest rotation, in (-m/2, m/2].
//
//	Wrap(350, 10, Degrees) == -20
func Wrap(target, measured float64, a AngleType) float64 {
	return Normalize(target-measured, a)
}

// Normalize maps an angle difference into (-m/2, m/2]. A difference of
// exactly half a turn resolves to the positive boundary.
func Normalize(d float64, a AngleType) float64 {
	m := a.Modulus()
	half := m / 2

	// math.Mod keeps the dividend's sign; fold into [0, m) first.
	r := math.Mod(d+half, m)
	if r < 0 {
		r += m
	}
	if r >= m {
		r -= m
	}
	r -= half

	if r <= -half {
		r = half
	}
	return r
}
