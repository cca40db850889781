package tune

import (
	"context"
	"fmt"

	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/metrics"
	"github.com/san-kum/ctrlsys/internal/plant"
	"github.com/san-kum/ctrlsys/internal/sim"
)

// Builder returns a fresh simulator for a gain set.
type Builder func(c control.PIDCoefficients) (*sim.Simulator, error)

// SimulationObjective scores gains by the named metric of a closed-loop
// run. band is the settling tolerance passed to the standard metrics.
func SimulationObjective(build Builder, x0 plant.State, cfg sim.Config, metric string, band float64) Objective {
	return func(ctx context.Context, c control.PIDCoefficients) (float64, error) {
		s, err := build(c)
		if err != nil {
			return 0, err
		}
		for _, m := range metrics.Standard(band) {
			s.AddMetric(m)
		}
		res, err := s.Run(ctx, x0, cfg)
		if err != nil {
			return 0, err
		}
		v, ok := res.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("unknown metric %q", metric)
		}
		// unsettled runs rank behind every settled one
		if metric == "settling_time" && v < 0 {
			return cfg.Duration * 10, nil
		}
		return v, nil
	}
}
