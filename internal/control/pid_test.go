package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackTermPID(t *testing.T) {
	p := NewFeedbackTerm(PIDCoefficients{KP: 2, KI: 0.5, KD: 1})

	u, err := p.Compute(1, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 2.05, u, 1e-12)

	// P=4, I=0.5*0.3, D=(2-1)/0.1
	u, err = p.Compute(2, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 14.15, u, 1e-9)
	assert.InDelta(t, 0.3, p.Integral(), 1e-12)
}

func TestFeedbackTermFirstCallHasNoDerivative(t *testing.T) {
	p := NewFeedbackTerm(PIDCoefficients{KD: 5})

	u, err := p.Compute(3, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 0.0, u)

	u, err = p.Compute(5, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, u, 1e-12)
}

func TestFeedbackTermZeroValueIsUsable(t *testing.T) {
	p := &FeedbackTerm{Coefficients: PIDCoefficients{KP: 1, KD: 1}}
	u, err := p.Compute(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, u)
}

func TestFeedbackTermInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		err, dt float64
		want    error
	}{
		{"zero dt", 1, 0, ErrInvalidTimestep},
		{"negative dt", 1, -0.1, ErrInvalidTimestep},
		{"NaN dt", 1, math.NaN(), ErrInvalidTimestep},
		{"Inf dt", 1, math.Inf(1), ErrInvalidTimestep},
		{"NaN error", math.NaN(), 0.1, ErrInvalidMeasurement},
		{"Inf error", math.Inf(-1), 0.1, ErrInvalidMeasurement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFeedbackTerm(PIDCoefficients{KP: 1, KI: 1, KD: 1})
			_, err := p.Compute(2, 0.5)
			require.NoError(t, err)

			_, err = p.Compute(tt.err, tt.dt)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1.0, p.Integral())

			// state still reflects the last good call
			u, err := p.Compute(2, 0.5)
			require.NoError(t, err)
			assert.InDelta(t, 2+2, u, 1e-12)
		})
	}
}

func TestFeedbackTermReset(t *testing.T) {
	p := NewFeedbackTerm(PIDCoefficients{KI: 1, KD: 1})
	_, _ = p.Compute(4, 1)
	_, _ = p.Compute(2, 1)
	require.NotZero(t, p.Integral())

	p.Reset()
	assert.Zero(t, p.Integral())

	u, err := p.Compute(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, u, "integral only, derivative suppressed after reset")
}

func TestFeedbackTermResetOnCrossover(t *testing.T) {
	run := func(reset bool) float64 {
		p := NewFeedbackTerm(PIDCoefficients{KI: 1})
		p.ResetOnCrossover = reset
		_, _ = p.Compute(1, 1)
		u, _ := p.Compute(-1, 1)
		return u
	}

	assert.Equal(t, 0.0, run(false))
	assert.Equal(t, -1.0, run(true))
}

func TestFeedbackTermLaws(t *testing.T) {
	tests := []struct {
		name string
		law  Law
		kp   float64
		err  float64
		want float64
	}{
		{"squid positive", SquID, 4, 4, 4},
		{"squid negative", SquID, 4, -4, -4},
		{"squid zero", SquID, 4, 0, 0},
		{"bangbang positive", BangBang, 100, 0.01, 1},
		{"bangbang negative", BangBang, 100, -3, -1},
		{"bangbang zero", BangBang, 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFeedbackTerm(PIDCoefficients{KP: tt.kp})
			p.Law = tt.law
			u, err := p.Compute(tt.err, 0.02)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, u, 1e-12)
		})
	}
}

func TestParseLaw(t *testing.T) {
	for in, want := range map[string]Law{"": PID, "pid": PID, "squid": SquID, "bangbang": BangBang} {
		got, err := ParseLaw(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseLaw("lqr")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
