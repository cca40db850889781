package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/ctrlsys/internal/config"
	"github.com/san-kum/ctrlsys/internal/metrics"
	"github.com/san-kum/ctrlsys/internal/sim"
	"github.com/san-kum/ctrlsys/internal/storage"
	"github.com/san-kum/ctrlsys/internal/viz"
)

func newRunCmd() *cobra.Command {
	var (
		flags       configFlags
		runs        int
		jobs        int
		plot        bool
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop simulation and store the trace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, name, err := flags.load(cmd)
			if err != nil {
				return err
			}
			log, flush := newLogger()
			defer flush()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if runs > 1 {
				return runEnsemble(ctx, log, cfg, runs, jobs)
			}
			return runOnce(ctx, log, cfg, name, plot, metricsFile)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&runs, "runs", 1, "repeat over consecutive noise seeds and summarize")
	cmd.Flags().IntVar(&jobs, "jobs", 4, "concurrent runs for --runs")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot the trace after the run")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file")
	return cmd
}

// newSimulator builds a fresh plant, integrator and control system for
// cfg and attaches the standard metrics.
func newSimulator(cfg *config.Config, opts ...sim.Option) (*sim.Simulator, error) {
	s, err := newBareSimulator(cfg, opts...)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Standard(cfg.Band()) {
		s.AddMetric(m)
	}
	p, err := cfg.NewPlant()
	if err != nil {
		return nil, err
	}
	if m := metrics.NewEnergySwing(p); m != nil {
		s.AddMetric(m)
	}
	return s, nil
}

func runOnce(ctx context.Context, log logr.Logger, cfg *config.Config, name string, plot bool, metricsFile string) error {
	reg := prometheus.NewRegistry()
	in, err := sim.NewInstruments(reg)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg, sim.WithLogger(log.WithName("sim")), sim.WithInstruments(in))
	if err != nil {
		return err
	}
	p, err := cfg.NewPlant()
	if err != nil {
		return err
	}

	log.Info("running simulation", "config", name, "plant", cfg.Plant.Model, "controller", controllerLabel(cfg))
	start := time.Now()
	result, runErr := s.Run(ctx, cfg.InitialState(p), cfg.SimConfig())
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		log.Error(runErr, "run ended early", "steps", result.StepsTaken)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Plant:      cfg.Plant.Model,
		Preset:     name,
		Seed:       cfg.Run.Seed,
		Dt:         cfg.Run.Dt,
		Duration:   cfg.Run.Duration,
		Integrator: cfg.Integrator,
		Controller: controllerLabel(cfg),
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (failures: %d)\n", result.StepsTaken, result.Failures)
	printMetrics(result.Metrics)

	if plot {
		fmt.Println()
		fmt.Println(viz.PlotRun(result, 80, 12))
	}
	return runErr
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range sortedMetricNames(m) {
		fmt.Printf("  %-20s %.6f\n", name, m[name])
	}
}

func runEnsemble(ctx context.Context, log logr.Logger, cfg *config.Config, runs, jobs int) error {
	factory := func() (*sim.Simulator, error) {
		return newSimulator(cfg)
	}
	p, err := cfg.NewPlant()
	if err != nil {
		return err
	}

	e := sim.NewEnsemble(factory, runs, cfg.Run.Seed)
	e.SetLimit(jobs)

	log.Info("running ensemble", "runs", runs, "jobs", jobs, "noise", cfg.Run.Noise)
	results, err := e.Run(ctx, cfg.InitialState(p), cfg.SimConfig())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, name := range sortedMetricNames(results[0].Metrics) {
		vals := make([]float64, len(results))
		for i, r := range results {
			vals[i] = r.Metrics[name]
		}
		mean, std, lo, hi := summarize(vals)
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", name, mean, std, lo, hi)
	}
	return w.Flush()
}

func sortedMetricNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func summarize(v []float64) (mean, std, lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		mean += x
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	mean /= float64(len(v))
	for _, x := range v {
		std += (x - mean) * (x - mean)
	}
	std = math.Sqrt(std / float64(len(v)))
	return mean, std, lo, hi
}
