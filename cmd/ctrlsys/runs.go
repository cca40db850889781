package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ctrlsys/internal/analysis"
	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/sim"
	"github.com/san-kum/ctrlsys/internal/storage"
	"github.com/san-kum/ctrlsys/internal/viz"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLANT\tTIME\tDURATION\tDT\tCONTROLLER\tIAE\tFAILURES")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%.4f\t%d\n",
					run.ID,
					run.Plant,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Duration,
					run.Dt,
					run.Controller,
					run.Metrics["iae"],
					run.Failures,
				)
			}
			return w.Flush()
		},
	}
}

// loadRun reads a stored run back into a result holding the primary axis
// trace.
func loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(trace) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}

	r := &sim.Result{
		Times:      make([]float64, len(trace)),
		Samples:    make([]sim.Sample, len(trace)),
		Metrics:    meta.Metrics,
		Failures:   meta.Failures,
		StepsTaken: len(trace),
	}
	for i, tp := range trace {
		r.Times[i] = tp.Time
		r.Samples[i] = sim.Sample{
			Time:     tp.Time,
			Target:   control.KineticState{Position: tp.Target},
			Measured: control.KineticState{Position: tp.Measured},
			Output:   tp.Output,
			Error:    tp.Error,
			Failed:   tp.Failed,
		}
	}
	return meta, r, nil
}

func newPlotCmd() *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, r, err := loadRun(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("plant: %s  controller: %s\n", meta.Plant, meta.Controller)
			fmt.Printf("samples: %d\n\n", len(r.Samples))
			fmt.Println(viz.PlotRun(r, width, height))
			fmt.Println()
			fmt.Println(viz.PlotSeries(r.Errors(), "tracking error", width, height/2+1))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 12, "plot height")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, r, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return storage.ExportJSON(os.Stdout, *meta, r)
			}
			return storage.ExportJSONFile(out, *meta, r)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportSVGCmd() *cobra.Command {
	var (
		out           string
		theme         string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, r, err := loadRun(args[0])
			if err != nil {
				return err
			}
			th := viz.GetTheme(theme)
			if out == "" || out == "-" {
				return viz.WriteSVG(os.Stdout, r, width, height, th)
			}
			if err := viz.WriteSVGFile(out, r, width, height, th); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%s)\n", out, meta.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&theme, "theme", "scope", "color theme (scope, phosphor, plain)")
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 400, "image height")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var minAmplitude float64
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation analysis of a run's tracking error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, r, err := loadRun(args[0])
			if err != nil {
				return err
			}
			errs := r.Errors()

			fmt.Printf("oscillation analysis: %s\n", meta.ID)
			fmt.Printf("plant: %s  controller: %s\n\n", meta.Plant, meta.Controller)

			freqs, mags := analysis.Spectrum(errs, meta.Dt)
			if len(mags) > 4 {
				plotData := mags[1 : len(mags)/4+1]
				fmt.Println(asciigraph.Plot(plotData,
					asciigraph.Height(12),
					asciigraph.Width(80),
					asciigraph.Caption(fmt.Sprintf("error spectrum, 0-%.1f hz", freqs[len(mags)/4])),
				))
				fmt.Println()
			}

			osc := analysis.DetectOscillation(errs, meta.Dt, minAmplitude)
			fmt.Printf("dominant frequency: %.3f hz\n", osc.Frequency)
			if osc.Period > 0 {
				fmt.Printf("period: %.3f s\n", osc.Period)
			}
			fmt.Printf("amplitude: %.5f\n", osc.Amplitude)
			fmt.Printf("sustained: %v\n", osc.Sustained)
			fmt.Printf("zero crossings: %d\n\n", len(analysis.Crossings(r.Times, errs)))

			fmt.Println(analysis.PortraitToASCII(analysis.ErrorPortrait(r), 60, 16))
			fmt.Println("error (x) vs error rate (y)")
			return nil
		},
	}
	cmd.Flags().Float64Var(&minAmplitude, "min-amplitude", 0.01, "smallest error amplitude counted as sustained oscillation")
	return cmd
}
