// Package tune searches PID gains against a closed-loop simulation.
package tune

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ctrlsys/internal/control"
)

var ErrNoCandidate = errors.New("tune: no candidate gains evaluated successfully")

// Objective scores a gain set; lower is better. It must build its own
// control system, since candidates are evaluated concurrently.
type Objective func(ctx context.Context, c control.PIDCoefficients) (float64, error)

type Candidate struct {
	Coefficients control.PIDCoefficients
	Score        float64
	Err          error
}

type GridSearch struct {
	KP, KI, KD []float64
	// Limit caps concurrent evaluations. Zero or less means no cap.
	Limit int
}

func NewGridSearch(kp, ki, kd []float64) *GridSearch {
	return &GridSearch{KP: orZero(kp), KI: orZero(ki), KD: orZero(kd)}
}

func orZero(v []float64) []float64 {
	if len(v) == 0 {
		return []float64{0}
	}
	return v
}

// Grid returns every gain combination, kP varying slowest.
func (g *GridSearch) Grid() []control.PIDCoefficients {
	kp, ki, kd := orZero(g.KP), orZero(g.KI), orZero(g.KD)
	out := make([]control.PIDCoefficients, 0, len(kp)*len(ki)*len(kd))
	for _, p := range kp {
		for _, i := range ki {
			for _, d := range kd {
				out = append(out, control.PIDCoefficients{KP: p, KI: i, KD: d})
			}
		}
	}
	return out
}

// Search evaluates the whole grid and returns the candidates sorted by
// score, best first. Candidates whose objective failed sort last with an
// infinite score. Search fails only when the context is cancelled or no
// candidate succeeds.
func (g *GridSearch) Search(ctx context.Context, objective Objective) ([]Candidate, error) {
	grid := g.Grid()
	results := make([]Candidate, len(grid))

	eg, ctx := errgroup.WithContext(ctx)
	if g.Limit > 0 {
		eg.SetLimit(g.Limit)
	}
	for i, c := range grid {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, err := objective(ctx, c)
			if err == nil && math.IsNaN(score) {
				err = fmt.Errorf("objective returned NaN")
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				score = math.Inf(1)
			}
			results[i] = Candidate{Coefficients: c, Score: score, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score < results[b].Score
	})
	if len(results) == 0 || results[0].Err != nil {
		return results, ErrNoCandidate
	}
	return results, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}
