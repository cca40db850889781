package control

import (
	"fmt"
)

type filterKind uint8

const (
	lowPassFilter filterKind = iota + 1
	customFilter
)

// Filter is one stage of a measurement filter chain: either a low-pass
// stage (stateful) or a user function (stateless).
type Filter struct {
	kind  filterKind
	alpha float64
	fn    func(float64) (float64, error)

	prev   float64
	primed bool
}

// LowPass returns an exponential smoothing stage
// y[n] = alpha*x[n] + (1-alpha)*y[n-1]. The first sample passes through.
func LowPass(alpha float64) Filter {
	return Filter{kind: lowPassFilter, alpha: alpha}
}

// Custom wraps a user transform. A returned error aborts the evaluation.
func Custom(fn func(float64) (float64, error)) Filter {
	return Filter{kind: customFilter, fn: fn}
}

// CustomFunc wraps an infallible user transform such as unit scaling.
func CustomFunc(fn func(float64) float64) Filter {
	if fn == nil {
		return Filter{kind: customFilter}
	}
	return Custom(func(v float64) (float64, error) { return fn(v), nil })
}

func (f *Filter) validate() error {
	switch f.kind {
	case lowPassFilter:
		if !(f.alpha > 0 && f.alpha <= 1) {
			return fmt.Errorf("%w: low-pass alpha must be in (0, 1], got %g", ErrInvalidConfig, f.alpha)
		}
	case customFilter:
		if f.fn == nil {
			return fmt.Errorf("%w: custom filter has nil function", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: zero-value filter", ErrInvalidConfig)
	}
	return nil
}

// next computes the stage output without touching its state.
func (f *Filter) next(x float64) (y float64, err error) {
	switch f.kind {
	case lowPassFilter:
		if !f.primed {
			return x, nil
		}
		return f.alpha*x + (1-f.alpha)*f.prev, nil
	case customFilter:
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		y, err = f.fn(x)
		if err == nil && !isFinite(y) {
			err = fmt.Errorf("non-finite output %g", y)
		}
		return y, err
	}
	return x, nil
}

func (f *Filter) commit(y float64) {
	if f.kind == lowPassFilter {
		f.prev = y
		f.primed = true
	}
}

func (f *Filter) reset() {
	f.prev = 0
	f.primed = false
}

// Chain applies filters in order, each consuming the previous output.
// A nil or empty Chain is the identity.
type Chain struct {
	stages  []Filter
	pending []float64
}

// NewChain validates and copies the filters. The copy gives the chain
// exclusive ownership of every stage's state.
func NewChain(filters ...Filter) (*Chain, error) {
	c := &Chain{
		stages:  make([]Filter, len(filters)),
		pending: make([]float64, len(filters)),
	}
	copy(c.stages, filters)
	for i := range c.stages {
		c.stages[i].reset()
		if err := c.stages[i].validate(); err != nil {
			return nil, fmt.Errorf("filter stage %d: %w", i, err)
		}
	}
	return c, nil
}

func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.stages)
}

// Apply filters one sample and commits the stage state.
func (c *Chain) Apply(x float64) (float64, error) {
	y, err := c.run(x)
	if err != nil {
		return 0, err
	}
	c.commit()
	return y, nil
}

// run evaluates every stage into pending without committing.
func (c *Chain) run(x float64) (float64, error) {
	if !isFinite(x) {
		return 0, ErrInvalidMeasurement
	}
	if c == nil {
		return x, nil
	}
	v := x
	for i := range c.stages {
		y, err := c.stages[i].next(v)
		if err != nil {
			return 0, &FilterError{Stage: i, Input: v, Wrapped: err}
		}
		c.pending[i] = y
		v = y
	}
	return v, nil
}

func (c *Chain) commit() {
	if c == nil {
		return
	}
	for i := range c.stages {
		c.stages[i].commit(c.pending[i])
	}
}

// Reset clears every stateful stage.
func (c *Chain) Reset() {
	if c == nil {
		return
	}
	for i := range c.stages {
		c.stages[i].reset()
	}
}
