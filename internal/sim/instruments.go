package sim

import "github.com/prometheus/client_golang/prometheus"

// Instruments records runner activity on a prometheus registry.
type Instruments struct {
	Ticks    prometheus.Counter
	Failures prometheus.Counter
	Output   prometheus.Gauge
	Error    prometheus.Gauge
}

// NewInstruments creates the runner collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewInstruments(reg prometheus.Registerer) (*Instruments, error) {
	in := &Instruments{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ctrlsys_ticks_total",
			Help: "Total number of control ticks evaluated",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ctrlsys_evaluation_failures_total",
			Help: "Total number of control evaluations that returned an error",
		}),
		Output: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ctrlsys_output",
			Help: "Last actuator output applied to the plant",
		}),
		Error: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ctrlsys_tracking_error",
			Help: "Last tracking error of the primary axis",
		}),
	}
	if reg == nil {
		return in, nil
	}
	for _, c := range []prometheus.Collector{in.Ticks, in.Failures, in.Output, in.Error} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func (in *Instruments) observe(s Sample) {
	if in == nil {
		return
	}
	in.Ticks.Inc()
	if s.Failed {
		in.Failures.Inc()
		return
	}
	in.Output.Set(s.Output)
	in.Error.Set(s.Error)
}
