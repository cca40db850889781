package metrics

import (
	"math"

	"github.com/san-kum/ctrlsys/internal/sim"
)

// IAE integrates the absolute tracking error over time.
type IAE struct {
	sum     float64
	prevT   float64
	prevErr float64
	primed  bool
}

func NewIAE() *IAE { return &IAE{} }

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(s sim.Sample) {
	if m.primed {
		m.sum += math.Abs(m.prevErr) * (s.Time - m.prevT)
	}
	m.prevT = s.Time
	m.prevErr = s.Error
	m.primed = true
}

func (m *IAE) Value() float64 { return m.sum }

func (m *IAE) Reset() { *m = IAE{} }

// ISE integrates the squared tracking error over time.
type ISE struct {
	sum     float64
	prevT   float64
	prevErr float64
	primed  bool
}

func NewISE() *ISE { return &ISE{} }

func (m *ISE) Name() string { return "ise" }

func (m *ISE) Observe(s sim.Sample) {
	if m.primed {
		m.sum += m.prevErr * m.prevErr * (s.Time - m.prevT)
	}
	m.prevT = s.Time
	m.prevErr = s.Error
	m.primed = true
}

func (m *ISE) Value() float64 { return m.sum }

func (m *ISE) Reset() { *m = ISE{} }

// Overshoot reports how far the response went past the target, as a
// percentage of the initial error. The direction of the initial error
// decides which side counts as past.
type Overshoot struct {
	initial float64
	worst   float64
	primed  bool
}

func NewOvershoot() *Overshoot { return &Overshoot{} }

func (m *Overshoot) Name() string { return "overshoot_pct" }

func (m *Overshoot) Observe(s sim.Sample) {
	if !m.primed {
		m.initial = s.Error
		m.primed = true
		return
	}
	if m.initial == 0 {
		return
	}
	// error of opposite sign to the initial one means we crossed the target
	past := -s.Error * math.Copysign(1, m.initial)
	m.worst = math.Max(m.worst, past)
}

func (m *Overshoot) Value() float64 {
	if m.initial == 0 {
		return 0
	}
	return 100 * m.worst / math.Abs(m.initial)
}

func (m *Overshoot) Reset() { *m = Overshoot{} }

// SettlingTime is the time from which the tracking error stays within
// Band until the end of the run. It reports -1 if the run ends outside
// the band.
type SettlingTime struct {
	Band float64

	settledAt float64
	inside    bool
}

func NewSettlingTime(band float64) *SettlingTime {
	return &SettlingTime{Band: band}
}

func (m *SettlingTime) Name() string { return "settling_time" }

func (m *SettlingTime) Observe(s sim.Sample) {
	within := math.Abs(s.Error) <= m.Band
	if within && !m.inside {
		m.settledAt = s.Time
	}
	m.inside = within
}

func (m *SettlingTime) Value() float64 {
	if !m.inside {
		return -1
	}
	return m.settledAt
}

func (m *SettlingTime) Reset() {
	m.settledAt = 0
	m.inside = false
}

// WithinBand is the fraction of samples whose tracking error is inside
// the threshold.
type WithinBand struct {
	threshold float64
	inside    int
	samples   int
}

func NewWithinBand(threshold float64) *WithinBand {
	return &WithinBand{threshold: threshold}
}

func (w *WithinBand) Name() string { return "within_band" }

func (w *WithinBand) Observe(s sim.Sample) {
	w.samples++
	if math.Abs(s.Error) <= w.threshold {
		w.inside++
	}
}

func (w *WithinBand) Value() float64 {
	if w.samples == 0 {
		return 1.0
	}
	return float64(w.inside) / float64(w.samples)
}

func (w *WithinBand) Reset() {
	w.inside = 0
	w.samples = 0
}

// SteadyStateError is the mean absolute error over the last Window samples.
type SteadyStateError struct {
	Window int
	ring   []float64
	next   int
	full   bool
}

func NewSteadyStateError(window int) *SteadyStateError {
	if window < 1 {
		window = 1
	}
	return &SteadyStateError{Window: window, ring: make([]float64, window)}
}

func (m *SteadyStateError) Name() string { return "steady_state_error" }

func (m *SteadyStateError) Observe(s sim.Sample) {
	m.ring[m.next] = math.Abs(s.Error)
	m.next = (m.next + 1) % m.Window
	if m.next == 0 {
		m.full = true
	}
}

func (m *SteadyStateError) Value() float64 {
	n := m.next
	if m.full {
		n = m.Window
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range m.ring[:n] {
		sum += v
	}
	return sum / float64(n)
}

func (m *SteadyStateError) Reset() {
	for i := range m.ring {
		m.ring[i] = 0
	}
	m.next = 0
	m.full = false
}

// Standard returns the metric set reported by the CLI. band is the
// settling tolerance in the units of the primary axis.
func Standard(band float64) []sim.Metric {
	return []sim.Metric{
		NewIAE(),
		NewISE(),
		NewOvershoot(),
		NewSettlingTime(band),
		NewWithinBand(band),
		NewSteadyStateError(50),
		NewControlEffort(),
		NewPeakOutput(),
	}
}
