package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/config"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/tui/components"
	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldTopHeroes
	settingsFieldMinMatches
	settingsFieldDefaultTarget
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldTheme:
		names := make([]string, len(theme.All))
		for i, th := range theme.All {
			names[i] = th.Name
		}
		ti.Placeholder = strings.Join(names, ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldTopHeroes:
		ti.Placeholder = "5"
		ti.SetValue(strconv.Itoa(a.cfg.General.TopHeroes))
	case settingsFieldMinMatches:
		ti.Placeholder = "5 (matches before forecasting)"
		ti.SetValue(strconv.Itoa(a.forecaster.MinSampleSize))
	case settingsFieldDefaultTarget:
		ti.Placeholder = "10000"
		ti.SetValue(strconv.Itoa(a.cfg.General.DefaultTarget))
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "5 (seconds, minimum 2)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited field. Invalid values are reported and
// leave the config untouched.
func (a *App) settingsSave() {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())

	positive := func(minimum int) (int, bool) {
		n, err := strconv.Atoi(val)
		if err != nil || n < minimum {
			a.settings.saveErr = fmt.Errorf("%q must be a number of at least %d", val, minimum)
			return 0, false
		}
		return n, true
	}

	switch a.settings.cursor {
	case settingsFieldTheme:
		if !theme.Valid(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldTopHeroes:
		n, ok := positive(1)
		if !ok {
			return
		}
		cfg.General.TopHeroes = n
	case settingsFieldMinMatches:
		n, ok := positive(1)
		if !ok {
			return
		}
		cfg.Forecast.MinMatches = n
		a.forecaster = pipeline.NewForecaster(n)
	case settingsFieldDefaultTarget:
		n, ok := positive(1)
		if !ok {
			return
		}
		cfg.General.DefaultTarget = n
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("%q is not true or false", val)
			return
		}
		cfg.TUI.AutoRefresh = b
		a.autoRefresh = b
	case settingsFieldRefreshInterval:
		n, ok := positive(int(minRefreshInterval.Seconds()))
		if !ok {
			return
		}
		cfg.TUI.RefreshIntervalSec = n
		a.refreshInterval = time.Duration(n) * time.Second
	}

	a.cfg = cfg
	a.recompute()
	a.settings.saveErr = config.Save(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	winStyle := lipgloss.NewStyle().Foreground(t.Win).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	fields := []struct{ label, value string }{
		{"Theme", a.cfg.Appearance.Theme},
		{"Top Heroes", strconv.Itoa(a.cfg.General.TopHeroes)},
		{"Forecast Sample", fmt.Sprintf("%d matches", a.forecaster.MinSampleSize)},
		{"Default Target", cli.FormatPTS(a.cfg.General.DefaultTarget)},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
	}

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			used := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if pad := components.CardInnerWidth(cw) - used; pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		formBody.WriteString("\n")
		formBody.WriteString(lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface).
			Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(winStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.Path()) + "\n")
	infoBody.WriteString(labelStyle.Render("Database:     ") + valueStyle.Render(a.dbPath) + "\n")
	infoBody.WriteString(labelStyle.Render("Revision:     ") + valueStyle.Render(strconv.FormatInt(a.revision, 10)) + "\n")
	infoBody.WriteString(labelStyle.Render("Game days:    ") + valueStyle.Render(cli.FormatNumber(int64(a.summary.ClosedDays))) + "\n")
	infoBody.WriteString(labelStyle.Render("Matches:      ") + valueStyle.Render(cli.FormatNumber(int64(a.summary.Periods.AllTime.Count))))
	if !a.lastRefresh.IsZero() {
		infoBody.WriteString("\n")
		infoBody.WriteString(labelStyle.Render("Last refresh: ") + valueStyle.Render(a.lastRefresh.Format("15:04:05")))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}
