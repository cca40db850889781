package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/integrators"
	"github.com/san-kum/ctrlsys/internal/plant"
	"github.com/san-kum/ctrlsys/internal/sim"
)

func testSession() Session {
	return Session{
		Name:       "spring",
		Plant:      plant.NewSpringMass(),
		Integrator: integrators.NewRK4(),
		Factory: func(g control.PIDCoefficients) (*control.ControlSystem, error) {
			return control.NewBuilder().PosPID(g).Build()
		},
		Gains:   control.PIDCoefficients{KP: 20, KD: 2},
		Initial: plant.State{0, 0},
		Target:  sim.Constant(control.KineticState{Position: 0.5}),
		Dt:      0.01,
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	mm, ok := next.(Model)
	require.True(t, ok)
	return mm
}

func TestModelSteps(t *testing.T) {
	m, err := NewModel(testSession())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		m = update(t, m, TickMsg{})
	}
	assert.Len(t, m.measured, 5*ticksPerFrame)
	assert.InDelta(t, 0.2, m.loop.Time(), 1e-9)

	view := m.View()
	assert.Contains(t, view, "SPRING")
	assert.Contains(t, view, "RUNNING")
}

func TestModelPauseAndReset(t *testing.T) {
	m, err := NewModel(testSession())
	require.NoError(t, err)

	m = update(t, m, TickMsg{})
	m = update(t, m, key(" "))
	m = update(t, m, TickMsg{})
	assert.Len(t, m.measured, ticksPerFrame)
	assert.Contains(t, m.View(), "PAUSED")

	m = update(t, m, key("r"))
	assert.Empty(t, m.measured)
	assert.Zero(t, m.loop.Time())
}

func TestModelTunesSelectedGain(t *testing.T) {
	m, err := NewModel(testSession())
	require.NoError(t, err)
	m = update(t, m, TickMsg{})
	before := m.loop.Time()

	m = update(t, m, key("tab"))
	m = update(t, m, key("up"))
	assert.Equal(t, 0.01, m.gains.KI)

	m = update(t, m, key("tab"))
	m = update(t, m, key("up"))
	assert.InDelta(t, 2.1, m.gains.KD, 1e-12)

	// retuning keeps the plant where it is
	assert.Equal(t, before, m.loop.Time())
	assert.Len(t, m.measured, ticksPerFrame)
}

func TestModelRejectsBadGains(t *testing.T) {
	s := testSession()
	s.Gains = control.PIDCoefficients{KP: -1}
	s.Factory = func(g control.PIDCoefficients) (*control.ControlSystem, error) {
		if g.KP > -1 {
			return nil, control.ErrInvalidConfig
		}
		return control.NewBuilder().PosPID(g).Build()
	}
	m, err := NewModel(s)
	require.NoError(t, err)

	m = update(t, m, key("down"))
	assert.Equal(t, -1.0, m.gains.KP)
	assert.ErrorIs(t, m.err, control.ErrInvalidConfig)
}

func TestThemeCycles(t *testing.T) {
	m, err := NewModel(testSession())
	require.NoError(t, err)
	for range Themes {
		m = update(t, m, key("t"))
	}
	assert.Equal(t, ThemeScope.Name, m.theme.Name)
	assert.Equal(t, ThemePlain, GetTheme("plain"))
}

func TestPlotRun(t *testing.T) {
	r := &sim.Result{}
	for i := 0; i < 200; i++ {
		r.Samples = append(r.Samples, sim.Sample{
			Target:   control.KineticState{Position: 1},
			Measured: control.KineticState{Position: float64(i) / 200},
			Output:   1 - float64(i)/200,
		})
	}
	out := PlotRun(r, 40, 8)
	assert.Contains(t, out, "output")
	assert.Greater(t, strings.Count(out, "\n"), 8)
	assert.Empty(t, PlotRun(&sim.Result{}, 40, 8))
}

func TestDownsample(t *testing.T) {
	v := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8}
	assert.Equal(t, []float64{0, 4, 8}, downsample(v, 3))
	assert.Equal(t, v, downsample(v, 20))
}
