package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ctrlsys/internal/plant"
)

// Factory builds an independent simulator. Each ensemble member gets its
// own, since a control system must not be shared between goroutines.
type Factory func() (*Simulator, error)

// Ensemble repeats a noisy run over consecutive seeds.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(f Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: f, numRuns: numRuns, seedStart: seedStart}
}

// SetLimit caps the number of concurrent runs. Zero or less means no cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

func (e *Ensemble) Run(ctx context.Context, x0 plant.State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			s, err := e.factory()
			if err != nil {
				return err
			}
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(i)

			res, err := s.Run(ctx, x0, cfgCopy)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
