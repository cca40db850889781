package config

import (
	"sort"

	"github.com/san-kum/ctrlsys/internal/control"
)

var Presets = map[string]*Config{
	"pendulum-hold": {
		Plant:      PlantConfig{Model: "pendulum", Initial: []float64{0.6, 0}},
		Integrator: "rk4",
		Control: ControlConfig{
			Position: &AxisConfig{
				Law: "pid", Kp: 25, Ki: 4, Kd: 6,
				Filters: []FilterConfig{{Type: "lowpass", Alpha: 0.8}},
			},
			Angular: "rad",
		},
		Run: RunConfig{Dt: 0.005, Duration: 8, Target: control.KineticState{Position: 0}, Band: 0.01},
	},
	"flywheel-speed": {
		Plant:      PlantConfig{Model: "flywheel"},
		Integrator: "rk4",
		Control: ControlConfig{
			Velocity: &AxisConfig{
				Law: "pid", Kp: 0.4, Ki: 2,
				Filters: []FilterConfig{{Type: "lowpass", Alpha: 0.5}},
			},
			Feedforward: &FeedforwardConfig{Kind: "basic", KV: 0.05 / 0.3},
		},
		Run: RunConfig{Dt: 0.002, Duration: 3, Target: control.KineticState{Velocity: 50}, Band: 0.5},
	},
	"elevator-hold": {
		Plant:      PlantConfig{Model: "elevator"},
		Integrator: "rk4",
		Control: ControlConfig{
			Position: &AxisConfig{
				Law: "pid", Kp: 60, Ki: 10, Kd: 15,
				Filters: []FilterConfig{{Type: "clamp", Min: -0.5, Max: 5}},
			},
			Feedforward: &FeedforwardConfig{Kind: "elevator", KG: 2 * 9.81},
		},
		Run: RunConfig{Dt: 0.005, Duration: 6, Target: control.KineticState{Position: 1.5}, StepAt: 0.5, Band: 0.02},
	},
	"turntable-wrap": {
		Plant:      PlantConfig{Model: "turntable", Initial: []float64{10, 0}},
		Integrator: "rk4",
		Control: ControlConfig{
			Position: &AxisConfig{
				Law: "pid", Kp: 0.2, Kd: 0.02,
				Filters: []FilterConfig{{Type: "deadband", Width: 0.05}},
			},
			Angular: "deg",
		},
		Run: RunConfig{Dt: 0.002, Duration: 4, Target: control.KineticState{Position: 350}, Band: 0.5},
	},
	"spring-squid": {
		Plant:      PlantConfig{Model: "spring_mass"},
		Integrator: "rk4",
		Control: ControlConfig{
			Position: &AxisConfig{
				Law: "squid", Kp: 40, Ki: 1, Kd: 3,
				ResetOnCrossover: true,
			},
		},
		Run: RunConfig{Dt: 0.005, Duration: 10, Target: control.KineticState{Position: 0.5}, Noise: 0.002, Seed: 7, Band: 0.02},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
