// Package theme defines color themes for the ptstrack TUI dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceBright lipgloss.Color // Selected row, active tab
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // Focused cards and overlays
	TextDim       lipgloss.Color // Hints, disabled
	TextMuted     lipgloss.Color // Labels
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	Win           lipgloss.Color // Wins, positive PTS
	Loss          lipgloss.Color // Losses, negative PTS
	Even          lipgloss.Color // 50% winrate, warnings
	Gold          lipgloss.Color // Achievements
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Win:           lipgloss.Color("#879A39"),
	Loss:          lipgloss.Color("#D14D41"),
	Even:          lipgloss.Color("#DA702C"),
	Gold:          lipgloss.Color("#D0A215"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	Win:           lipgloss.Color("#A6E3A1"),
	Loss:          lipgloss.Color("#F38BA8"),
	Even:          lipgloss.Color("#FAB387"),
	Gold:          lipgloss.Color("#F9E2AF"),
}

// TokyoNight is a cool blue/purple theme.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	Win:           lipgloss.Color("#9ECE6A"),
	Loss:          lipgloss.Color("#F7768E"),
	Even:          lipgloss.Color("#FF9E64"),
	Gold:          lipgloss.Color("#E0AF68"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Win:           lipgloss.Color("2"),
	Loss:          lipgloss.Color("1"),
	Even:          lipgloss.Color("3"),
	Gold:          lipgloss.Color("11"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// Valid reports whether name is a known theme.
func Valid(name string) bool {
	for _, t := range All {
		if t.Name == name {
			return true
		}
	}
	return false
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// WinrateColor picks the color for a winrate percentage.
func (t Theme) WinrateColor(pct int) lipgloss.Color {
	switch {
	case pct > 50:
		return t.Win
	case pct < 50:
		return t.Loss
	}
	return t.Even
}

// DeltaColor picks the color for a signed PTS change.
func (t Theme) DeltaColor(delta int) lipgloss.Color {
	switch {
	case delta > 0:
		return t.Win
	case delta < 0:
		return t.Loss
	}
	return t.TextDim
}
