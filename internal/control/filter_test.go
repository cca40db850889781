package control

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowPassSmoothing(t *testing.T) {
	c, err := NewChain(LowPass(0.5))
	require.NoError(t, err)

	inputs := []float64{10, 20, 25}
	expected := []float64{10, 15, 20}
	for i, x := range inputs {
		y, err := c.Apply(x)
		require.NoError(t, err)
		assert.Equal(t, expected[i], y, "sample %d", i)
	}
}

func TestLowPassInvalidAlpha(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
	}{
		{"zero", 0},
		{"negative", -1},
		{"above one", 1.5},
		{"NaN", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChain(LowPass(tt.alpha))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLowPassAlphaOneIsIdentity(t *testing.T) {
	c, err := NewChain(LowPass(1))
	require.NoError(t, err)
	for _, x := range []float64{3, -7, 12.5} {
		y, err := c.Apply(x)
		require.NoError(t, err)
		assert.Equal(t, x, y)
	}
}

func TestChainOrder(t *testing.T) {
	addOne := CustomFunc(func(v float64) float64 { return v + 1 })
	double := CustomFunc(func(v float64) float64 { return v * 2 })

	ab, err := NewChain(addOne, double)
	require.NoError(t, err)
	ba, err := NewChain(double, addOne)
	require.NoError(t, err)

	y, err := ab.Apply(3)
	require.NoError(t, err)
	assert.Equal(t, 8.0, y)

	y, err = ba.Apply(3)
	require.NoError(t, err)
	assert.Equal(t, 7.0, y)
}

func TestEmptyChainIsIdentity(t *testing.T) {
	var nilChain *Chain
	empty, err := NewChain()
	require.NoError(t, err)

	for _, c := range []*Chain{nilChain, empty} {
		y, err := c.Apply(42.5)
		require.NoError(t, err)
		assert.Equal(t, 42.5, y)
		assert.Equal(t, 0, c.Len())
	}
}

func TestCustomFilterFailure(t *testing.T) {
	errTooLarge := errors.New("reading out of range")
	c, err := NewChain(
		LowPass(0.5),
		Custom(func(v float64) (float64, error) {
			if v > 100 {
				return 0, errTooLarge
			}
			return v, nil
		}),
	)
	require.NoError(t, err)

	y, err := c.Apply(10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, y)

	_, err = c.Apply(1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFilterComputation)
	assert.ErrorIs(t, err, errTooLarge)

	var fe *FilterError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 1, fe.Stage)

	// the failed sample must not have advanced the low-pass state
	y, err = c.Apply(20)
	require.NoError(t, err)
	assert.Equal(t, 15.0, y)
}

func TestCustomFilterPanicAndNonFinite(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
	}{
		{"panic", func(float64) float64 { panic("boom") }},
		{"NaN", func(float64) float64 { return math.NaN() }},
		{"Inf", func(v float64) float64 { return math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewChain(CustomFunc(tt.fn))
			require.NoError(t, err)
			_, err = c.Apply(1)
			assert.ErrorIs(t, err, ErrFilterComputation)
		})
	}
}

func TestNilCustomFilterRejected(t *testing.T) {
	_, err := NewChain(CustomFunc(nil))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewChain(Filter{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestChainRejectsNonFiniteInput(t *testing.T) {
	c, err := NewChain(LowPass(0.5))
	require.NoError(t, err)
	_, err = c.Apply(math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidMeasurement)
}

func TestChainsOwnTheirState(t *testing.T) {
	shared := LowPass(0.5)
	a, err := NewChain(shared)
	require.NoError(t, err)
	b, err := NewChain(shared)
	require.NoError(t, err)

	_, _ = a.Apply(100)
	_, _ = a.Apply(0)

	y, err := b.Apply(8)
	require.NoError(t, err)
	assert.Equal(t, 8.0, y)
}

func TestChainReset(t *testing.T) {
	c, err := NewChain(LowPass(0.25))
	require.NoError(t, err)

	_, _ = c.Apply(100)
	_, _ = c.Apply(0)
	c.Reset()

	y, err := c.Apply(-3)
	require.NoError(t, err)
	assert.Equal(t, -3.0, y)
}
