package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ctrlsys/internal/sim"
)

// downsample keeps at most n evenly spaced points of v.
func downsample(v []float64, n int) []float64 {
	if n <= 0 || len(v) <= n {
		return v
	}
	out := make([]float64, n)
	step := float64(len(v)-1) / float64(n-1)
	for i := range out {
		out[i] = v[int(float64(i)*step+0.5)]
	}
	return out
}

// PlotRun draws the target and measurement of the primary axis on one
// chart and the controller output below it.
func PlotRun(r *sim.Result, width, height int) string {
	if r == nil || len(r.Samples) < 2 {
		return ""
	}
	tracking := asciigraph.PlotMany(
		[][]float64{downsample(r.Targets(), width), downsample(r.Measured(), width)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Yellow, asciigraph.Cyan),
		asciigraph.Caption("target (yellow) / measured (cyan)"),
	)
	output := asciigraph.Plot(
		downsample(r.Outputs(), width),
		asciigraph.Height(height/2+1),
		asciigraph.Width(width),
		asciigraph.Caption("output"),
	)
	return tracking + "\n\n" + output
}

// PlotSeries draws a single named trace.
func PlotSeries(v []float64, caption string, width, height int) string {
	if len(v) < 2 {
		return ""
	}
	return asciigraph.Plot(downsample(v, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
