package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

// TargetBar renders progress toward the target PTS with a gradient fill
// and the percentage on the right.
func TargetBar(pct int, width int) string {
	t := theme.Active
	frac := clampFrac(float64(pct) / 100)

	bar := progress.New(
		progress.WithGradient(string(t.Accent), string(t.Win)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(frac) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%d%%", pct))
}

// WinrateBar renders a labeled winrate bar. count is shown after the
// percentage; a zero count renders a dash instead of a percentage.
func WinrateBar(label string, pct, count, labelW, barWidth int) string {
	t := theme.Active
	color := t.WinrateColor(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	countStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	pctStr := "   -"
	frac := 0.0
	if count > 0 {
		pctStr = fmt.Sprintf("%3d%%", pct)
		frac = clampFrac(float64(pct) / 100)
	}

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(frac) +
		spaceStyle.Render(" ") +
		pctStyle.Render(pctStr) +
		spaceStyle.Render("  ") +
		countStyle.Render(fmt.Sprintf("%d games", count))
}

func clampFrac(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
