package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-logr/logr"

	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/plant"
)

// Simulator runs a control system in closed loop against a plant model.
type Simulator struct {
	plant       plant.Plant
	integrator  plant.Integrator
	system      *control.ControlSystem
	metrics     []Metric
	observers   []Observer
	logger      logr.Logger
	instruments *Instruments
}

type Option func(*Simulator)

func WithLogger(l logr.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithInstruments(in *Instruments) Option {
	return func(s *Simulator) { s.instruments = in }
}

func New(p plant.Plant, integ plant.Integrator, cs *control.ControlSystem, opts ...Option) *Simulator {
	s := &Simulator{
		plant:      p,
		integrator: integ,
		system:     cs,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run resets the control system and simulates cfg.Duration seconds from x0.
// On an aborted run the partial result is returned with the error. A tick
// that aborts the run does not advance the plant, so the last entry of
// States is the state the failed evaluation saw.
func (s *Simulator) Run(ctx context.Context, x0 plant.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(x0, cfg); err != nil {
		return nil, err
	}
	if err := s.system.Reset(); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Times:   make([]float64, 0, steps),
		Samples: make([]Sample, 0, steps),
		States:  make([]plant.State, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	loop := NewLoop(s.plant, s.integrator, s.system, x0)
	loop.SetHoldOnError(cfg.HoldOnError)
	if cfg.Noise > 0 {
		loop.SetNoise(cfg.Noise, cfg.Seed)
	}
	target := cfg.Target
	if target == nil {
		target = Constant(control.KineticState{})
	}

	log := s.logger.WithValues("dt", cfg.Dt, "steps", steps)
	log.V(1).Info("starting run", "axes", len(s.system.Axes()))

	result.States = append(result.States, loop.State())

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		sample, err := loop.Tick(target(loop.Time()), cfg.Dt)
		s.instruments.observe(sample)
		if err != nil {
			result.Failures++
			tickErr := TickError{Time: sample.Time, Step: i, Err: err}
			if !cfg.HoldOnError {
				log.Error(err, "evaluation failed, aborting run", "step", i, "t", sample.Time)
				runErr = tickErr
				break
			}
			log.V(1).Info("evaluation failed, holding output", "step", i, "t", sample.Time, "error", err.Error())
		}

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnSample(sample)
		}

		x := loop.State()
		if !x.IsValid() {
			runErr = TickError{Time: sample.Time, Step: i, Err: fmt.Errorf("invalid plant state (NaN/Inf)")}
			log.Error(runErr, "plant diverged")
			break
		}

		result.StepsTaken++
		result.Times = append(result.Times, sample.Time)
		result.Samples = append(result.Samples, sample)
		result.States = append(result.States, x)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	log.V(1).Info("run finished", "stepsTaken", result.StepsTaken, "failures", result.Failures)

	return result, runErr
}

func (s *Simulator) validateConfig(x0 plant.State, cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Noise < 0 {
		return fmt.Errorf("noise must be non-negative, got %f", cfg.Noise)
	}
	if len(x0) != s.plant.StateDim() {
		return fmt.Errorf("initial state has %d components, plant expects %d", len(x0), s.plant.StateDim())
	}
	return nil
}

// RunWithCallback steps the loop until the duration elapses, the context
// is cancelled or callback returns false. It is used by the live view.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 plant.State, cfg Config, callback func(Sample) bool) error {
	if err := s.validateConfig(x0, cfg); err != nil {
		return err
	}
	if err := s.system.Reset(); err != nil {
		return err
	}

	loop := NewLoop(s.plant, s.integrator, s.system, x0)
	loop.SetHoldOnError(cfg.HoldOnError)
	target := cfg.Target
	if target == nil {
		target = Constant(control.KineticState{})
	}

	for loop.Time() < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sample, err := loop.Tick(target(loop.Time()), cfg.Dt)
		s.instruments.observe(sample)
		if err != nil && !cfg.HoldOnError {
			return err
		}
		if !callback(sample) {
			return nil
		}
		if !loop.State().IsValid() {
			return fmt.Errorf("invalid state at t=%.4f", loop.Time())
		}
	}
	return nil
}
