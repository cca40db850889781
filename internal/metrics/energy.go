package metrics

import (
	"math"

	"github.com/san-kum/ctrlsys/internal/plant"
	"github.com/san-kum/ctrlsys/internal/sim"
)

type energetic interface {
	Energy(x plant.State) float64
}

// EnergySwing is the largest relative change in plant energy over the
// run. Plants without an energy function report zero.
type EnergySwing struct {
	plant    energetic
	initial  float64
	maxDrift float64
	samples  int
}

// NewEnergySwing returns nil when p does not expose its energy.
func NewEnergySwing(p plant.Plant) *EnergySwing {
	e, ok := p.(energetic)
	if !ok {
		return nil
	}
	return &EnergySwing{plant: e}
}

func (e *EnergySwing) Name() string { return "energy_swing" }

func (e *EnergySwing) Observe(s sim.Sample) {
	energy := e.plant.Energy(s.State)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	scale := math.Max(math.Abs(e.initial), 1e-9)
	e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e.initial)/scale)
}

func (e *EnergySwing) Value() float64 {
	return e.maxDrift
}

func (e *EnergySwing) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
