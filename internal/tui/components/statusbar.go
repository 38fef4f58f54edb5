package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar. A non-empty message is
// shown on the right, in the loss color when isErr is set.
func RenderStatusBar(width int, message string, isErr bool, autoRefresh bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	msgStyle := style.Foreground(t.AccentBright)
	if isErr {
		msgStyle = style.Foreground(t.Loss)
	}

	left := " [s]tart [m]atch [e]nd [t]arget [u]ndo  [?]help [q]uit"
	if autoRefresh {
		left += "  " + "auto"
	}
	right := ""
	if message != "" {
		right = message + " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		right = ""
		padding = max(width-lipgloss.Width(left), 0)
	}

	return style.Render(left) +
		style.Render(strings.Repeat(" ", padding)) +
		msgStyle.Render(right)
}
