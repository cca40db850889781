package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/ctrlsys/internal/config"
	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/sim"
	"github.com/san-kum/ctrlsys/internal/tune"
)

func newTuneCmd() *cobra.Command {
	var (
		flags         configFlags
		kpR, kiR, kdR string
		metric        string
		top, jobs     int
		save          string
	)
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search the primary axis gains",
		Long: `Grid search the primary axis gains against the configured plant.

Ranges are either a comma separated list (1,2,5) or lo:hi:n for n evenly
spaced values. An omitted range keeps the configured gain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := flags.load(cmd)
			if err != nil {
				return err
			}
			axis := cfg.Primary()
			if axis == nil {
				return fmt.Errorf("nothing to tune: no feedback axis configured")
			}

			g := &tune.GridSearch{Limit: jobs}
			for _, r := range []struct {
				spec string
				def  float64
				dst  *[]float64
			}{{kpR, axis.Kp, &g.KP}, {kiR, axis.Ki, &g.KI}, {kdR, axis.Kd, &g.KD}} {
				vals, err := parseRange(r.spec, r.def)
				if err != nil {
					return err
				}
				*r.dst = vals
			}

			log, flush := newLogger()
			defer flush()

			p, err := cfg.NewPlant()
			if err != nil {
				return err
			}
			build := func(c control.PIDCoefficients) (*sim.Simulator, error) {
				return newBareSimulator(cfg.WithGains(c))
			}
			objective := tune.SimulationObjective(build, cfg.InitialState(p), cfg.SimConfig(), metric, cfg.Band())

			log.Info("tuning", "candidates", len(g.Grid()), "metric", metric, "jobs", jobs)
			start := time.Now()
			ranked, err := g.Search(cmd.Context(), objective)
			if err != nil {
				return err
			}
			log.V(1).Info("search finished", "elapsed", time.Since(start).String())

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "RANK\tKP\tKI\tKD\t%s\n", strings.ToUpper(metric))
			for i, c := range ranked {
				if i >= top {
					break
				}
				score := strconv.FormatFloat(c.Score, 'f', 6, 64)
				if c.Err != nil {
					score = "failed: " + c.Err.Error()
				}
				fmt.Fprintf(w, "%d\t%g\t%g\t%g\t%s\n", i+1, c.Coefficients.KP, c.Coefficients.KI, c.Coefficients.KD, score)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if save != "" {
				best := cfg.WithGains(ranked[0].Coefficients)
				if err := config.Save(save, best); err != nil {
					return err
				}
				fmt.Printf("\nbest gains written to %s\n", save)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&kpR, "kp-range", "", "kP values")
	cmd.Flags().StringVar(&kiR, "ki-range", "", "kI values")
	cmd.Flags().StringVar(&kdR, "kd-range", "", "kD values")
	cmd.Flags().StringVar(&metric, "metric", "iae", "metric to minimize")
	cmd.Flags().IntVar(&top, "top", 10, "rows to print")
	cmd.Flags().IntVar(&jobs, "jobs", runtime.NumCPU(), "concurrent evaluations")
	cmd.Flags().StringVar(&save, "save", "", "write the config with the best gains to this file")
	return cmd
}

// newBareSimulator builds a simulator with no metrics attached.
func newBareSimulator(cfg *config.Config, opts ...sim.Option) (*sim.Simulator, error) {
	p, err := cfg.NewPlant()
	if err != nil {
		return nil, err
	}
	integ, err := cfg.NewIntegrator()
	if err != nil {
		return nil, err
	}
	cs, err := cfg.BuildSystem()
	if err != nil {
		return nil, err
	}
	return sim.New(p, integ, cs, opts...), nil
}

// parseRange accepts "a,b,c" or "lo:hi:n". Empty yields def alone.
func parseRange(spec string, def float64) ([]float64, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return []float64{def}, nil
	}
	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return nil, fmt.Errorf("invalid range %q, want lo:hi:n", spec)
		}
		return tune.Linspace(lo, hi, n), nil
	}
	var out []float64
	for _, f := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q in %q", f, spec)
		}
		out = append(out, v)
	}
	return out, nil
}
