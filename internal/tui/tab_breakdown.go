package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/tui/components"
	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

func (a App) renderBreakdownTab(cw int) string {
	if a.isCompactLayout() {
		return a.renderHeroesCard(cw) + "\n" + a.renderTimeOfDayCard(cw)
	}
	halves := components.LayoutRow(cw, 2)
	return components.CardRow([]string{
		a.renderHeroesCard(halves[0]),
		a.renderTimeOfDayCard(halves[1]),
	})
}

func (a App) renderHeroesCard(w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	top := pipeline.TopHeroes(a.heroes, max(a.cfg.General.TopHeroes, 1))
	title := fmt.Sprintf("Top Heroes (%d of %d)", len(top), len(a.heroes))
	if len(top) == 0 {
		return components.ContentCard(title, dimStyle.Render("No detailed matches recorded yet."), w)
	}

	// Games, Record, Winrate
	fixed := 6 + 10 + 5 + 3
	nameW := max(min(innerW/3, 18), 8)
	barW := max(innerW-nameW-fixed, 4)

	maxTotal := 0
	for _, h := range top {
		maxTotal = max(maxTotal, h.Total)
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %6s %10s %5s ", nameW, "Hero", "Games", "Record", "Win%")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	for _, h := range top {
		body.WriteString("\n")
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(h.Hero, nameW))))
		body.WriteString(mutedStyle.Render(fmt.Sprintf(" %6d %10s", h.Total, fmt.Sprintf("%dW %dL", h.Wins, h.Losses))))
		body.WriteString(lipgloss.NewStyle().Foreground(t.WinrateColor(h.Percent)).Background(t.Surface).Bold(true).
			Render(fmt.Sprintf(" %4d%%", h.Percent)))
		body.WriteString(space)
		body.WriteString(components.HBar(h.Total, maxTotal, barW, t.WinrateColor(h.Percent)))
	}

	return components.ContentCard(title, body.String(), w)
}

func (a App) renderTimeOfDayCard(w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	labelW := 17
	barW := max(innerW-labelW-18, 6)

	var body strings.Builder
	total := 0
	best := -1
	for i, s := range a.slots {
		total += s.Total
		if s.Total > 0 && (best < 0 || s.Percent > a.slots[best].Percent) {
			best = i
		}
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(components.WinrateBar(cli.FormatSlot(s.Slot), s.Percent, s.Total, labelW, barW))
	}

	if total == 0 {
		return components.ContentCard("Time of Day", dimStyle.Render("No detailed matches recorded yet."), w)
	}
	if best >= 0 {
		body.WriteString("\n\n")
		body.WriteString(dimStyle.Render(fmt.Sprintf("Best slot: %s at %d%%", a.slots[best].Slot, a.slots[best].Percent)))
	}
	return components.ContentCard("Time of Day", body.String(), w)
}
