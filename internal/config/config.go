package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/integrators"
	"github.com/san-kum/ctrlsys/internal/plant"
	"github.com/san-kum/ctrlsys/internal/sim"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultBand     = 0.02
	DefaultKp       = 10.0
	DefaultKi       = 0.5
	DefaultKd       = 2.0
)

type Config struct {
	Plant      PlantConfig   `yaml:"plant"`
	Integrator string        `yaml:"integrator"`
	Control    ControlConfig `yaml:"control"`
	Run        RunConfig     `yaml:"run"`
}

type PlantConfig struct {
	Model   string             `yaml:"model"`
	Params  map[string]float64 `yaml:"params,omitempty"`
	Initial []float64          `yaml:"initial,omitempty"`
}

type ControlConfig struct {
	Position     *AxisConfig `yaml:"position,omitempty"`
	Velocity     *AxisConfig `yaml:"velocity,omitempty"`
	Acceleration *AxisConfig `yaml:"acceleration,omitempty"`
	// Angular is the angle unit of the position axis: rad, deg or rev.
	// Empty means the position axis is linear.
	Angular     string             `yaml:"angular,omitempty"`
	Feedforward *FeedforwardConfig `yaml:"feedforward,omitempty"`
}

type AxisConfig struct {
	Law              string         `yaml:"law,omitempty"`
	Kp               float64        `yaml:"kp"`
	Ki               float64        `yaml:"ki"`
	Kd               float64        `yaml:"kd"`
	ResetOnCrossover bool           `yaml:"reset_on_crossover,omitempty"`
	Filters          []FilterConfig `yaml:"filters,omitempty"`
}

// FilterConfig describes one stage of an axis filter chain. Type selects
// which of the remaining fields apply.
type FilterConfig struct {
	Type   string  `yaml:"type"`
	Alpha  float64 `yaml:"alpha,omitempty"`
	Factor float64 `yaml:"factor,omitempty"`
	Offset float64 `yaml:"offset,omitempty"`
	Min    float64 `yaml:"min,omitempty"`
	Max    float64 `yaml:"max,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
}

type FeedforwardConfig struct {
	Kind string  `yaml:"kind"`
	KG   float64 `yaml:"kg,omitempty"`
	KV   float64 `yaml:"kv,omitempty"`
	KA   float64 `yaml:"ka,omitempty"`
	KS   float64 `yaml:"ks,omitempty"`
}

type RunConfig struct {
	Dt       float64              `yaml:"dt"`
	Duration float64              `yaml:"duration"`
	Target   control.KineticState `yaml:"target"`
	// StepAt delays the target: before it the reference is zero.
	StepAt float64 `yaml:"step_at,omitempty"`
	// Schedule moves the reference to further targets after the first.
	Schedule    []sim.Waypoint `yaml:"schedule,omitempty"`
	Noise       float64        `yaml:"noise,omitempty"`
	Seed        int64          `yaml:"seed,omitempty"`
	HoldOnError bool           `yaml:"hold_on_error,omitempty"`
	// Band is the settling tolerance used by the tracking metrics.
	Band float64 `yaml:"band,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Plant:      PlantConfig{Model: "spring_mass"},
		Integrator: "rk4",
		Control: ControlConfig{
			Position: &AxisConfig{
				Law: "pid",
				Kp:  DefaultKp,
				Ki:  DefaultKi,
				Kd:  DefaultKd,
			},
		},
		Run: RunConfig{
			Dt:       DefaultDt,
			Duration: DefaultDuration,
			Target:   control.KineticState{Position: 1},
			Band:     DefaultBand,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	// a file with its own control section replaces the default axes
	var probe struct {
		Control *yaml.Node `yaml:"control"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Control != nil {
		cfg.Control = ControlConfig{}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("config: marshal: %v", err))
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("config: unmarshal: %v", err))
	}
	return out
}

// Validate checks everything that can be checked without running:
// run parameters, the plant and integrator names and the control system.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Run.Dt > 0) {
		errs = append(errs, fmt.Errorf("run.dt must be positive, got %g", c.Run.Dt))
	}
	if !(c.Run.Duration > 0) {
		errs = append(errs, fmt.Errorf("run.duration must be positive, got %g", c.Run.Duration))
	}
	if c.Run.Noise < 0 {
		errs = append(errs, fmt.Errorf("run.noise must be non-negative, got %g", c.Run.Noise))
	}
	if c.Run.Band < 0 {
		errs = append(errs, fmt.Errorf("run.band must be non-negative, got %g", c.Run.Band))
	}
	for i := 1; i < len(c.Run.Schedule); i++ {
		if c.Run.Schedule[i].At < c.Run.Schedule[i-1].At {
			errs = append(errs, fmt.Errorf("run.schedule must be sorted by time, entry %d is out of order", i))
			break
		}
	}
	if _, err := c.NewPlant(); err != nil {
		errs = append(errs, err)
	}
	if _, err := integrators.Lookup(c.Integrator); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.BuildSystem(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) NewPlant() (plant.Plant, error) {
	p, err := plant.Lookup(c.Plant.Model)
	if err != nil {
		return nil, err
	}
	if err := plant.Apply(p, c.Plant.Params); err != nil {
		return nil, fmt.Errorf("plant %s: %w", c.Plant.Model, err)
	}
	return p, nil
}

func (c *Config) NewIntegrator() (plant.Integrator, error) {
	return integrators.Lookup(c.Integrator)
}

// InitialState pads or truncates plant.initial to the plant's dimension.
func (c *Config) InitialState(p plant.Plant) plant.State {
	x := make(plant.State, p.StateDim())
	copy(x, c.Plant.Initial)
	return x
}

func (c *Config) SimConfig() sim.Config {
	target := sim.Constant(c.Run.Target)
	if c.Run.StepAt > 0 {
		target = sim.Step(control.KineticState{}, c.Run.Target, c.Run.StepAt)
	}
	if len(c.Run.Schedule) > 0 {
		initial := target
		points := c.Run.Schedule
		after := sim.Schedule(control.KineticState{}, points)
		target = func(t float64) control.KineticState {
			if t < points[0].At {
				return initial(t)
			}
			return after(t)
		}
	}
	return sim.Config{
		Dt:          c.Run.Dt,
		Duration:    c.Run.Duration,
		Target:      target,
		Noise:       c.Run.Noise,
		Seed:        c.Run.Seed,
		HoldOnError: c.Run.HoldOnError,
	}
}

// Band returns the settling tolerance, falling back to DefaultBand.
func (c *Config) Band() float64 {
	if c.Run.Band > 0 {
		return c.Run.Band
	}
	return DefaultBand
}

// ToControl translates the control section into an engine configuration.
func (c *Config) ToControl() (control.Config, error) {
	var out control.Config
	axes := []struct {
		name string
		in   *AxisConfig
		out  **control.AxisConfig
	}{
		{"position", c.Control.Position, &out.Position},
		{"velocity", c.Control.Velocity, &out.Velocity},
		{"acceleration", c.Control.Acceleration, &out.Acceleration},
	}
	for _, a := range axes {
		if a.in == nil {
			continue
		}
		ac, err := a.in.toControl()
		if err != nil {
			return control.Config{}, fmt.Errorf("control.%s: %w", a.name, err)
		}
		*a.out = ac
	}

	if c.Control.Angular != "" {
		unit, err := control.ParseAngleType(c.Control.Angular)
		if err != nil {
			return control.Config{}, fmt.Errorf("control.angular: %w", err)
		}
		out.Angular = true
		out.AngleType = unit
	}

	if ff := c.Control.Feedforward; ff != nil {
		kind, err := control.ParseFeedforwardKind(ff.Kind)
		if err != nil {
			return control.Config{}, fmt.Errorf("control.feedforward: %w", err)
		}
		out.Feedforward = control.Feedforward{Kind: kind, KG: ff.KG, KV: ff.KV, KA: ff.KA, KS: ff.KS}
	}
	return out, nil
}

// BuildSystem returns a fresh control system for this configuration.
func (c *Config) BuildSystem() (*control.ControlSystem, error) {
	cc, err := c.ToControl()
	if err != nil {
		return nil, err
	}
	return control.New(cc)
}

// WithGains returns a copy whose primary axis uses the given gains.
func (c *Config) WithGains(g control.PIDCoefficients) *Config {
	out := c.Clone()
	axis := out.Primary()
	if axis == nil {
		axis = &AxisConfig{Law: "pid"}
		out.Control.Position = axis
	}
	axis.Kp, axis.Ki, axis.Kd = g.KP, g.KI, g.KD
	return out
}

// Primary returns the first configured axis in position, velocity,
// acceleration order.
func (c *Config) Primary() *AxisConfig {
	for _, a := range []*AxisConfig{c.Control.Position, c.Control.Velocity, c.Control.Acceleration} {
		if a != nil {
			return a
		}
	}
	return nil
}

func (a *AxisConfig) toControl() (*control.AxisConfig, error) {
	law, err := control.ParseLaw(a.Law)
	if err != nil {
		return nil, err
	}
	filters := make([]control.Filter, 0, len(a.Filters))
	for i, fc := range a.Filters {
		f, err := fc.build()
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		filters = append(filters, f)
	}
	return &control.AxisConfig{
		Coefficients:     control.PIDCoefficients{KP: a.Kp, KI: a.Ki, KD: a.Kd},
		Law:              law,
		ResetOnCrossover: a.ResetOnCrossover,
		Filters:          filters,
	}, nil
}

func (fc FilterConfig) build() (control.Filter, error) {
	switch fc.Type {
	case "lowpass", "low_pass":
		return control.LowPass(fc.Alpha), nil
	case "scale":
		k := fc.Factor
		return control.CustomFunc(func(v float64) float64 { return v * k }), nil
	case "offset":
		off := fc.Offset
		return control.CustomFunc(func(v float64) float64 { return v + off }), nil
	case "clamp":
		lo, hi := fc.Min, fc.Max
		if lo > hi {
			return control.Filter{}, fmt.Errorf("%w: clamp min %g above max %g", control.ErrInvalidConfig, lo, hi)
		}
		return control.CustomFunc(func(v float64) float64 { return math.Max(lo, math.Min(hi, v)) }), nil
	case "deadband":
		w := fc.Width
		if w < 0 {
			return control.Filter{}, fmt.Errorf("%w: negative deadband width %g", control.ErrInvalidConfig, w)
		}
		return control.CustomFunc(func(v float64) float64 {
			if math.Abs(v) < w {
				return 0
			}
			return v
		}), nil
	}
	return control.Filter{}, fmt.Errorf("%w: unknown filter type %q", control.ErrInvalidConfig, fc.Type)
}
