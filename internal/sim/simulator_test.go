package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/plant"
)

// firstOrder is x' = u.
type firstOrder struct{}

func (firstOrder) StateDim() int { return 1 }
func (firstOrder) Derive(x plant.State, u, t float64) plant.State {
	return plant.State{u}
}
func (firstOrder) Measure(x plant.State, u, t float64) control.KineticState {
	return control.KineticState{Position: x[0], Velocity: u}
}

type eulerStep struct{}

func (eulerStep) Step(p plant.Plant, x plant.State, u, t, dt float64) plant.State {
	dx := p.Derive(x, u, t)
	return plant.State{x[0] + dt*dx[0]}
}

func proportional(t *testing.T, kp float64, filters ...control.Filter) *control.ControlSystem {
	t.Helper()
	cs, err := control.NewBuilder().
		PosFilter(filters...).
		PosPID(control.PIDCoefficients{KP: kp}).
		Build()
	require.NoError(t, err)
	return cs
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string   { return "count" }
func (c *countingMetric) Observe(Sample) { c.n++ }
func (c *countingMetric) Value() float64 { return float64(c.n) }
func (c *countingMetric) Reset()         { c.n = 0 }

func TestSimulatorConverges(t *testing.T) {
	logger := zapr.NewLogger(zaptest.NewLogger(t))
	s := New(firstOrder{}, eulerStep{}, proportional(t, 2), WithLogger(logger))
	s.AddMetric(&countingMetric{})

	cfg := Config{
		Dt:       0.01,
		Duration: 5,
		Target:   Constant(control.KineticState{Position: 1}),
	}
	result, err := s.Run(context.Background(), plant.State{0}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 500, result.StepsTaken)
	assert.Len(t, result.Samples, 500)
	assert.Len(t, result.States, 501)
	assert.Equal(t, 500.0, result.Metrics["count"])

	final := result.States[len(result.States)-1][0]
	assert.InDelta(t, 1.0, final, 1e-3)

	first := result.Samples[0]
	assert.Equal(t, 1.0, first.Error)
	assert.Equal(t, 2.0, first.Output)
}

func TestSimulatorRunIsRepeatable(t *testing.T) {
	s := New(firstOrder{}, eulerStep{}, proportional(t, 3, control.LowPass(0.5)))
	cfg := Config{Dt: 0.02, Duration: 1, Target: Constant(control.KineticState{Position: 2})}

	a, err := s.Run(context.Background(), plant.State{0}, cfg)
	require.NoError(t, err)
	b, err := s.Run(context.Background(), plant.State{0}, cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Outputs(), b.Outputs())
}

func flaky(failOn int) control.Filter {
	calls := 0
	return control.Custom(func(v float64) (float64, error) {
		calls++
		if calls == failOn {
			return 0, errors.New("sensor dropout")
		}
		return v, nil
	})
}

func TestSimulatorAbortsOnEvaluationError(t *testing.T) {
	reg := prometheus.NewRegistry()
	in, err := NewInstruments(reg)
	require.NoError(t, err)

	s := New(firstOrder{}, eulerStep{}, proportional(t, 1, flaky(3)), WithInstruments(in))
	cfg := Config{Dt: 0.1, Duration: 1, Target: Constant(control.KineticState{Position: 1})}

	result, err := s.Run(context.Background(), plant.State{0}, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, control.ErrFilterComputation)

	var te TickError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 2, te.Step)

	assert.Equal(t, 2, result.StepsTaken)
	assert.Equal(t, 1, result.Failures)
	assert.Equal(t, 3.0, testutil.ToFloat64(in.Ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(in.Failures))
}

func TestSimulatorHoldsOutputOnError(t *testing.T) {
	s := New(firstOrder{}, eulerStep{}, proportional(t, 1, flaky(3)))
	cfg := Config{
		Dt:          0.1,
		Duration:    1,
		Target:      Constant(control.KineticState{Position: 1}),
		HoldOnError: true,
	}

	result, err := s.Run(context.Background(), plant.State{0}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 10, result.StepsTaken)
	assert.Equal(t, 1, result.Failures)

	held := result.Samples[2]
	assert.True(t, held.Failed)
	assert.Equal(t, result.Samples[1].Output, held.Output)
}

func TestSimulatorRejectsBadConfig(t *testing.T) {
	s := New(firstOrder{}, eulerStep{}, proportional(t, 1))
	tests := []struct {
		name string
		x0   plant.State
		cfg  Config
	}{
		{"zero dt", plant.State{0}, Config{Dt: 0, Duration: 1}},
		{"NaN dt", plant.State{0}, Config{Dt: math.NaN(), Duration: 1}},
		{"zero duration", plant.State{0}, Config{Dt: 0.1}},
		{"negative noise", plant.State{0}, Config{Dt: 0.1, Duration: 1, Noise: -1}},
		{"wrong state size", plant.State{0, 0}, Config{Dt: 0.1, Duration: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.x0, tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestSimulatorCancel(t *testing.T) {
	s := New(firstOrder{}, eulerStep{}, proportional(t, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, plant.State{0}, Config{Dt: 0.1, Duration: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.StepsTaken)
}

func TestStepSetpoint(t *testing.T) {
	sp := Step(control.KineticState{}, control.KineticState{Position: 5}, 1)
	assert.Equal(t, 0.0, sp(0.5).Position)
	assert.Equal(t, 5.0, sp(1).Position)
}

func TestScheduleSetpoint(t *testing.T) {
	sp := Schedule(control.KineticState{Position: 1}, []Waypoint{
		{At: 2, Target: control.KineticState{Position: 3}},
		{At: 4, Target: control.KineticState{Position: -1}},
	})
	assert.Equal(t, 1.0, sp(0).Position)
	assert.Equal(t, 3.0, sp(2).Position)
	assert.Equal(t, 3.0, sp(3.9).Position)
	assert.Equal(t, -1.0, sp(10).Position)
}

func TestRunWithCallbackStops(t *testing.T) {
	s := New(firstOrder{}, eulerStep{}, proportional(t, 1))
	seen := 0
	err := s.RunWithCallback(context.Background(), plant.State{0},
		Config{Dt: 0.1, Duration: 10, Target: Constant(control.KineticState{Position: 1})},
		func(Sample) bool {
			seen++
			return seen < 5
		})
	require.NoError(t, err)
	assert.Equal(t, 5, seen)
}

func TestEnsembleSeeds(t *testing.T) {
	factory := func() (*Simulator, error) {
		cs, err := control.NewBuilder().PosPID(control.PIDCoefficients{KP: 1}).Build()
		if err != nil {
			return nil, err
		}
		return New(firstOrder{}, eulerStep{}, cs), nil
	}
	e := NewEnsemble(factory, 4, 10)
	e.SetLimit(2)

	cfg := Config{Dt: 0.05, Duration: 1, Noise: 0.1, Target: Constant(control.KineticState{Position: 1})}
	results, err := e.Run(context.Background(), plant.State{0}, cfg)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.NotEqual(t, results[0].Outputs(), results[1].Outputs())

	again, err := e.Run(context.Background(), plant.State{0}, cfg)
	require.NoError(t, err)
	assert.Equal(t, results[3].Outputs(), again[3].Outputs())
}

func TestInstrumentsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewInstruments(reg)
	require.NoError(t, err)
	_, err = NewInstruments(reg)
	assert.Error(t, err)

	in, err := NewInstruments(nil)
	require.NoError(t, err)
	assert.NotNil(t, in.Ticks)
}
