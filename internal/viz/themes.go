package viz

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeScope = Theme{
		Name:    "scope",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ffff00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemePhosphor = Theme{
		Name:    "phosphor",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#006600"),
		Success: lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ccff00"),
		Error:   lipgloss.Color("#ff3300"),
	}

	ThemePlain = Theme{
		Name:    "plain",
		Primary: lipgloss.Color("252"),
		Accent:  lipgloss.Color("255"),
		Text:    lipgloss.Color("250"),
		Muted:   lipgloss.Color("240"),
		Success: lipgloss.Color("250"),
		Warning: lipgloss.Color("250"),
		Error:   lipgloss.Color("255"),
	}

	Themes = []Theme{ThemeScope, ThemePhosphor, ThemePlain}
)

func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeScope
}

// next returns the theme after t in Themes, wrapping around.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

type styles struct {
	header, label, value, active, graph, help, ok, warn, bad lipgloss.Style
	panel                                                    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		active: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:  lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		ok:     lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		warn:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		bad:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(1, 2),
	}
}
