package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ctrlsys/internal/control"
	"github.com/san-kum/ctrlsys/internal/plant"
	"github.com/san-kum/ctrlsys/internal/sim"
)

const (
	historyCapacity = 400
	ticksPerFrame   = 4
	frameRate       = 30
)

type TickMsg time.Time

// SystemFactory builds a control system for the given primary-axis gains.
type SystemFactory func(g control.PIDCoefficients) (*control.ControlSystem, error)

type Session struct {
	Name       string
	Plant      plant.Plant
	Integrator plant.Integrator
	Factory    SystemFactory
	Gains      control.PIDCoefficients
	Initial    plant.State
	Target     sim.Setpoint
	Dt         float64
}

// Model is the live tuning view. It owns its loop and control system.
type Model struct {
	session  Session
	gains    control.PIDCoefficients
	loop     *sim.Loop
	running  bool
	selected int
	theme    Theme
	styles   styles

	targets  []float64
	measured []float64
	outputs  []float64
	last     sim.Sample
	failures int
	err      error
}

func NewModel(s Session) (Model, error) {
	m := Model{
		session: s,
		gains:   s.Gains,
		running: true,
		theme:   ThemeScope,
		styles:  newStyles(ThemeScope),
	}
	if err := m.rebuild(true); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "r":
			m.err = m.rebuild(true)
		case "tab":
			m.selected = (m.selected + 1) % 3
		case "up", "k":
			m.adjustGain(1.05)
		case "down", "j":
			m.adjustGain(0.95)
		case "t":
			m.theme = m.theme.next()
			m.styles = newStyles(m.theme)
		}
	case TickMsg:
		if m.running {
			for i := 0; i < ticksPerFrame; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

// rebuild swaps in a control system for the current gains. With fresh
// set the plant restarts from its initial state and history is cleared.
func (m *Model) rebuild(fresh bool) error {
	cs, err := m.session.Factory(m.gains)
	if err != nil {
		return err
	}
	if !fresh && m.loop != nil {
		m.loop.SetSystem(cs)
		return nil
	}
	m.loop = sim.NewLoop(m.session.Plant, m.session.Integrator, cs, m.session.Initial)
	m.loop.SetHoldOnError(true)
	if fresh {
		m.targets = m.targets[:0]
		m.measured = m.measured[:0]
		m.outputs = m.outputs[:0]
		m.failures = 0
		m.last = sim.Sample{}
	}
	return nil
}

func (m *Model) adjustGain(factor float64) {
	g := m.gains
	switch m.selected {
	case 0:
		g.KP = nudge(g.KP, factor)
	case 1:
		g.KI = nudge(g.KI, factor)
	case 2:
		g.KD = nudge(g.KD, factor)
	}
	prev := m.gains
	m.gains = g
	if err := m.rebuild(false); err != nil {
		m.gains = prev
		m.err = err
		return
	}
	m.err = nil
}

// nudge scales v, stepping off zero so a zero gain can be raised.
func nudge(v, factor float64) float64 {
	if v == 0 && factor > 1 {
		return 0.01
	}
	return v * factor
}

func (m *Model) step() {
	target := m.session.Target(m.loop.Time())
	s, err := m.loop.Tick(target, m.session.Dt)
	if err != nil {
		m.failures++
		m.err = err
	}
	m.last = s
	m.targets = pushCapped(m.targets, s.Target.Get(s.Axis))
	m.measured = pushCapped(m.measured, s.Measured.Get(s.Axis))
	m.outputs = pushCapped(m.outputs, s.Output)

	if !m.loop.State().IsValid() {
		m.running = false
		m.err = fmt.Errorf("plant diverged at t=%.2fs, press r to reset", m.loop.Time())
	}
}

func pushCapped(buf []float64, v float64) []float64 {
	buf = append(buf, v)
	if len(buf) > historyCapacity {
		buf = buf[1:]
	}
	return buf
}

func (m Model) View() string {
	st := m.styles
	var graphs strings.Builder
	if len(m.measured) > 1 {
		chart := asciigraph.PlotMany(
			[][]float64{m.targets, m.measured},
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.SeriesColors(asciigraph.Yellow, asciigraph.Cyan),
			asciigraph.Caption("target / measured"),
		)
		graphs.WriteString(st.graph.Render(chart) + "\n")
		out := asciigraph.Plot(m.outputs, asciigraph.Height(5), asciigraph.Width(60), asciigraph.Caption("output"))
		graphs.WriteString(st.graph.Render(out))
	}

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.session.Name)) + "\n")
	switch {
	case m.err != nil && !m.running:
		s.WriteString(st.bad.Render("STOPPED") + "\n\n")
	case !m.running:
		s.WriteString(st.warn.Render("PAUSED") + "\n\n")
	default:
		s.WriteString(st.ok.Render("RUNNING") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.loop.Time()))
	row("Axis", m.last.Axis.String())
	row("Error", fmt.Sprintf("%+.4f", m.last.Error))
	row("Output", fmt.Sprintf("%+.4f", m.last.Output))
	row("Failures", fmt.Sprintf("%d", m.failures))

	s.WriteString("\nGAINS\n")
	for i, g := range []struct {
		name string
		v    float64
	}{{"kP", m.gains.KP}, {"kI", m.gains.KI}, {"kD", m.gains.KD}} {
		line := fmt.Sprintf("%-4s %10.4f", g.name, g.v)
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.value.Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + st.bad.Render(truncate(m.err.Error(), 40)) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit\nTab:Gain ↑↓:Tune T:Theme"))

	return lipgloss.JoinHorizontal(lipgloss.Top, graphs.String(), st.panel.Render(s.String()))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
