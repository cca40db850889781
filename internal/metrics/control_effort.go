package metrics

import (
	"math"

	"github.com/san-kum/ctrlsys/internal/sim"
)

// ControlEffort is the mean absolute actuator output.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s sim.Sample) {
	c.sum += math.Abs(s.Output)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// PeakOutput is the largest absolute actuator output seen.
type PeakOutput struct {
	peak float64
}

func NewPeakOutput() *PeakOutput { return &PeakOutput{} }

func (p *PeakOutput) Name() string { return "peak_output" }

func (p *PeakOutput) Observe(s sim.Sample) {
	p.peak = math.Max(p.peak, math.Abs(s.Output))
}

func (p *PeakOutput) Value() float64 { return p.peak }
func (p *PeakOutput) Reset()         { p.peak = 0 }
