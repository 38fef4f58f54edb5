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

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	s := a.summary
	var b strings.Builder

	// Row 1: headline numbers
	all := s.Periods.AllTime
	forecastColor := t.TextPrimary
	switch s.Forecast.Kind {
	case model.OutcomeAlreadyAchieved, model.OutcomeEstimate:
		forecastColor = t.Win
	case model.OutcomeUnreachable:
		forecastColor = t.Loss
	}
	forecastValue, forecastNote := overviewForecast(s.Forecast)

	dayNote := "no day open"
	if s.DayOpen {
		dayNote = "day in progress"
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Current PTS", Value: cli.FormatPTS(s.CurrentPTS), Note: dayNote, Color: t.AccentBright},
		{Label: "Target", Value: cli.FormatPTS(s.TargetPTS), Note: fmt.Sprintf("%s to go", cli.FormatPTS(max(s.TargetPTS-s.CurrentPTS, 0)))},
		{Label: "Forecast", Value: forecastValue, Note: forecastNote, Color: forecastColor},
		{Label: "All-time", Value: cli.FormatPercent(all.Percent), Note: fmt.Sprintf("%dW %dL over %d days", all.Wins, all.Losses(), s.ClosedDays), Color: t.WinrateColor(all.Percent)},
	}, cw))
	b.WriteString("\n")

	// Row 2: progress toward the target
	barW := max(components.CardInnerWidth(cw)-6, 10)
	b.WriteString(components.ContentCard("Progress to target", components.TargetBar(s.ProgressPercent, barW), cw))
	b.WriteString("\n")

	// Row 3: winrate windows + the open day
	winCard := func(w int) string {
		inner := components.CardInnerWidth(w)
		labelW := 9
		barWidth := max(inner-labelW-18, 6)
		rows := []struct {
			label string
			stats model.WinrateStats
		}{
			{"Today", s.Periods.Today},
			{"7 days", s.Periods.Week},
			{"30 days", s.Periods.Month},
			{"All time", s.Periods.AllTime},
		}
		lines := make([]string, len(rows))
		for i, r := range rows {
			lines[i] = components.WinrateBar(r.label, r.stats.Percent, r.stats.Count, labelW, barWidth)
		}
		return components.ContentCard("Winrate", strings.Join(lines, "\n"), w)
	}

	if a.isCompactLayout() {
		b.WriteString(winCard(cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Today", a.renderOpenDay(components.CardInnerWidth(cw)), cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			winCard(halves[0]),
			components.ContentCard("Today", a.renderOpenDay(components.CardInnerWidth(halves[1])), halves[1]),
		}))
	}
	b.WriteString("\n")

	// Row 4: achievements
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Achievements (%d/%d)", pipeline.UnlockedCount(a.achievements), len(a.achievements)),
		a.renderAchievements(),
		cw,
	))

	return b.String()
}

func overviewForecast(o model.Outcome) (value, note string) {
	switch o.Kind {
	case model.OutcomeEstimate:
		return o.String(), fmt.Sprintf("%d matches, %.1f/day", o.MatchesNeeded, o.AvgMatchesPerDay)
	case model.OutcomeAlreadyAchieved:
		return "Reached", "target met"
	case model.OutcomeUnreachable:
		return "∞", "winrate too low"
	}
	return "-", o.Reason
}

// renderOpenDay lists the in-progress day's matches, newest first.
func (a App) renderOpenDay(innerW int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	cur := a.state.Current
	if cur == nil {
		return dim.Render("No game day in progress.") + "\n" + dim.Render("Press [s] to start one.")
	}

	var b strings.Builder
	b.WriteString(muted.Render("Started  ") + value.Render(fmt.Sprintf("%s at %s", cli.FormatDate(cur.Date), cli.FormatPTS(cur.StartPTS))))
	b.WriteString("\n")
	b.WriteString(muted.Render("Record   ") + value.Render(fmt.Sprintf("%dW %dL", cur.Wins(), cur.Losses())))
	if delta, ok := cur.PTSChange(); ok {
		b.WriteString(muted.Render("  ") + lipgloss.NewStyle().Foreground(t.DeltaColor(delta)).Background(t.Surface).Render(cli.FormatDelta(delta)))
	}

	if cur.IsSimple() {
		b.WriteString("\n")
		b.WriteString(dim.Render("Summary counts only"))
		return b.String()
	}

	matches := pipeline.NormalizeCurrent(*cur)
	const shown = 5
	for i := len(matches) - 1; i >= 0 && i >= len(matches)-shown; i-- {
		m := matches[i]
		b.WriteString("\n")
		b.WriteString(renderMatchLine(m, innerW))
	}
	if len(matches) > shown {
		b.WriteString("\n")
		b.WriteString(dim.Render(fmt.Sprintf("+%d earlier", len(matches)-shown)))
	}
	return b.String()
}

func renderMatchLine(m model.Match, innerW int) string {
	t := theme.Active
	resultStyle := lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface).Bold(true)
	mark := "L"
	if m.IsWin() {
		resultStyle = resultStyle.Foreground(t.Win)
		mark = "W"
	}
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	delta := ""
	if m.PTSChange != nil {
		delta = cli.FormatDelta(*m.PTSChange)
	}
	heroW := max(innerW-24, 8)

	return resultStyle.Render(mark) +
		text.Render(fmt.Sprintf(" %-*s", heroW, truncStr(m.HeroName(), heroW))) +
		dim.Render(fmt.Sprintf(" %-9s %5s", m.Slot(), delta))
}

func (a App) renderAchievements() string {
	t := theme.Active
	on := lipgloss.NewStyle().Foreground(t.Gold).Background(t.Surface).Bold(true)
	off := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	gap := lipgloss.NewStyle().Background(t.Surface).Render("   ")

	parts := make([]string, len(a.achievements))
	for i, ach := range a.achievements {
		label := fmt.Sprintf("%s %s", ach.Title, cli.FormatPTS(ach.Threshold))
		if ach.Unlocked {
			parts[i] = on.Render("★ " + label)
		} else {
			parts[i] = off.Render("☆ " + label)
		}
	}
	return strings.Join(parts, gap)
}
