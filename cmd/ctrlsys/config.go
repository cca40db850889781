package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/ctrlsys/internal/config"
)

// configFlags are shared by every command that builds a closed loop.
type configFlags struct {
	preset     string
	file       string
	dt         float64
	duration   float64
	target     float64
	kp, ki, kd float64
	noise      float64
	seed       int64
	hold       bool
	integrator string
}

func (f *configFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.preset, "preset", "", "start from a named preset")
	fs.StringVarP(&f.file, "config", "c", "", "config file path (yaml)")
	fs.Float64Var(&f.dt, "dt", config.DefaultDt, "control period in seconds")
	fs.Float64Var(&f.duration, "time", config.DefaultDuration, "duration in seconds")
	fs.Float64Var(&f.target, "target", 1, "primary axis target")
	fs.Float64Var(&f.kp, "kp", config.DefaultKp, "primary axis kP")
	fs.Float64Var(&f.ki, "ki", config.DefaultKi, "primary axis kI")
	fs.Float64Var(&f.kd, "kd", config.DefaultKd, "primary axis kD")
	fs.Float64Var(&f.noise, "noise", 0, "measurement noise standard deviation")
	fs.Int64Var(&f.seed, "seed", 1, "noise seed")
	fs.BoolVar(&f.hold, "hold", false, "hold the last output when an evaluation fails")
	fs.StringVar(&f.integrator, "integrator", "rk4", "integrator (euler, rk4)")
}

// load resolves the configuration: preset, then config file, then any
// flag the user set explicitly.
func (f *configFlags) load(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "default"

	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
		name = f.preset
	}
	if f.file != "" {
		loaded, err := config.Load(f.file)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = f.file
	}

	changed := cmd.Flags().Changed
	if changed("dt") {
		cfg.Run.Dt = f.dt
	}
	if changed("time") {
		cfg.Run.Duration = f.duration
	}
	if changed("noise") {
		cfg.Run.Noise = f.noise
	}
	if changed("seed") {
		cfg.Run.Seed = f.seed
	}
	if changed("hold") {
		cfg.Run.HoldOnError = f.hold
	}
	if changed("integrator") {
		cfg.Integrator = f.integrator
	}
	if changed("kp") || changed("ki") || changed("kd") {
		axis := cfg.Primary()
		if axis == nil {
			return nil, "", fmt.Errorf("gain flags need a configured axis")
		}
		if changed("kp") {
			axis.Kp = f.kp
		}
		if changed("ki") {
			axis.Ki = f.ki
		}
		if changed("kd") {
			axis.Kd = f.kd
		}
	}
	if changed("target") {
		switch {
		case cfg.Control.Position != nil:
			cfg.Run.Target.Position = f.target
		case cfg.Control.Velocity != nil:
			cfg.Run.Target.Velocity = f.target
		default:
			cfg.Run.Target.Acceleration = f.target
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func controllerLabel(cfg *config.Config) string {
	a := cfg.Primary()
	if a == nil {
		return "feedforward"
	}
	law := a.Law
	if law == "" {
		law = "pid"
	}
	return fmt.Sprintf("%s(%g,%g,%g)", law, a.Kp, a.Ki, a.Kd)
}
