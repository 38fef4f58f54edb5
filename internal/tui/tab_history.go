package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/tui/components"
	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

// historyState holds the history tab state.
type historyState struct {
	cursor int
}

const deltaChartHeight = 3

func (a App) renderHistoryTab(cw, h int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.days) == 0 {
		return components.ContentCard("History", dim.Render("No game days yet. Press [s] to start one."), cw)
	}

	trend := a.renderTrendCard(cw)
	listH := max(h-lipgloss.Height(trend), 8)

	if a.isCompactLayout() {
		return trend + "\n" + a.renderDayList(cw, listH)
	}

	leftW := max(cw*3/5, 50)
	rightW := cw - leftW
	return trend + "\n" + components.CardRow([]string{
		a.renderDayList(leftW, listH),
		a.renderDayDetail(rightW),
	})
}

func (a App) renderTrendCard(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var body strings.Builder

	// oldest-left for both charts
	if len(a.history) > 0 {
		series := make([]int, len(a.history))
		for i, p := range a.history {
			series[i] = p.PTS
		}
		if len(series) > innerW-14 {
			series = series[len(series)-(innerW-14):]
		}
		first, last := series[0], series[len(series)-1]
		body.WriteString(muted.Render("PTS   "))
		body.WriteString(components.Sparkline(series, t.Accent))
		body.WriteString(dim.Render(fmt.Sprintf("  %s → %s", cli.FormatPTS(first), cli.FormatPTS(last))))
		body.WriteString("\n")
	}

	var deltas []int
	for i := len(a.days) - 1; i >= 0; i-- {
		if d := a.days[i]; d.HasChange {
			deltas = append(deltas, d.PTSChange)
		}
	}
	if len(deltas) > 0 {
		body.WriteString(components.DeltaBars(deltas, innerW-8, deltaChartHeight))
	} else {
		body.WriteString(dim.Render("No PTS changes recorded yet."))
	}

	return components.ContentCard("Trend", body.String(), cw)
}

func (a App) renderDayList(w, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	// card border (2) + title (1) + header (2) + hint (2)
	visible := max(h-7, 3)
	cursor := a.histState.cursor
	offset := 0
	if cursor >= visible {
		offset = cursor - visible + 1
	}
	last := min(offset+visible, len(a.days))

	var body strings.Builder
	header := fmt.Sprintf("%-12s %7s %7s %6s %9s %5s %6s", "Date", "Start", "End", "Games", "Record", "Win%", "PTS")
	body.WriteString(headerStyle.Render(truncStr(header, innerW)))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))

	for i := offset; i < last; i++ {
		d := a.days[i]
		date := cli.FormatDate(d.Date)
		if d.Open {
			date += " *"
		}
		endPTS := "-"
		if d.EndPTS != nil {
			endPTS = cli.FormatPTS(*d.EndPTS)
		}
		wr := "-"
		if d.Matches > 0 {
			wr = cli.FormatPercent(d.Winrate)
		}
		change := "-"
		if d.HasChange {
			change = cli.FormatDelta(d.PTSChange)
		}
		line := fmt.Sprintf("%-12s %7s %7s %6d %9s %5s ", date, cli.FormatPTS(d.StartPTS), endPTS, d.Matches,
			fmt.Sprintf("%dW %dL", d.Wins, d.Losses), wr)

		body.WriteString("\n")
		if i == cursor {
			body.WriteString(selectedStyle.Render(line))
			body.WriteString(lipgloss.NewStyle().Foreground(t.DeltaColor(d.PTSChange)).Background(t.SurfaceBright).Bold(true).
				Render(fmt.Sprintf("%6s", change)))
			continue
		}
		body.WriteString(rowStyle.Render(line))
		body.WriteString(lipgloss.NewStyle().Foreground(t.DeltaColor(d.PTSChange)).Background(t.Surface).
			Render(fmt.Sprintf("%6s", change)))
	}

	body.WriteString("\n\n")
	body.WriteString(mutedStyle.Render(fmt.Sprintf("[j/k] select  %d/%d", cursor+1, len(a.days))))

	return components.ContentCard("Game Days", body.String(), w)
}

// renderDayDetail shows the selected day's matches, or its summary counts
// when no individual matches were logged.
func (a App) renderDayDetail(w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if a.histState.cursor >= len(a.days) {
		return ""
	}
	d := a.days[a.histState.cursor]
	title := cli.FormatDate(d.Date)
	if d.Open {
		title += " (open)"
	}

	var b strings.Builder
	b.WriteString(muted.Render("Weekday  ") + value.Render(cli.FormatDayOfWeek(int(d.Date.Local().Weekday()))))
	b.WriteString("\n")
	b.WriteString(muted.Render("Record   ") + value.Render(fmt.Sprintf("%dW %dL in %d games", d.Wins, d.Losses, d.Matches)))

	matches := a.dayMatches(d)
	if !d.Detailed {
		b.WriteString("\n\n")
		b.WriteString(dim.Render("Summary counts only"))
		return components.ContentCard(title, b.String(), w)
	}
	b.WriteString("\n")
	for _, m := range matches {
		b.WriteString("\n")
		b.WriteString(renderMatchLine(m, innerW-8))
		if m.Duration > 0 {
			b.WriteString(dim.Render(" " + cli.FormatMinutes(m.Duration)))
		}
	}
	return components.ContentCard(title, b.String(), w)
}

func (a App) dayMatches(d model.DailyStats) []model.Match {
	if d.Open && a.state.Current != nil {
		return pipeline.NormalizeCurrent(*a.state.Current)
	}
	for _, gd := range a.state.Days {
		if gd.ID == d.ID {
			return pipeline.NormalizeDay(gd)
		}
	}
	return nil
}
