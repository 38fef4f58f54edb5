// Package tui provides the interactive Bubble Tea dashboard for ptstrack.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/theirongolddev/ptstrack/internal/config"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/store"
	"github.com/theirongolddev/ptstrack/internal/tracker"
	"github.com/theirongolddev/ptstrack/internal/tui/components"
	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

// Store is the persistence the dashboard reads from and writes through.
type Store interface {
	Revision(ctx context.Context) (int64, error)
	Load(ctx context.Context) (model.TrackerState, error)
	Update(ctx context.Context, fn func(model.TrackerState) (model.TrackerState, error)) (model.TrackerState, error)
	Undo(ctx context.Context) (model.TrackerState, error)
}

// StateLoadedMsg is sent when the tracker state has been read.
// Unchanged is set when a refresh found the same revision.
type StateLoadedMsg struct {
	State     model.TrackerState
	Revision  int64
	Unchanged bool
	Err       error
}

// stateSavedMsg is sent after a transition or undo was written.
type stateSavedMsg struct {
	State    model.TrackerState
	Revision int64
	Note     string
	Err      error
}

// App is the root Bubble Tea model.
type App struct {
	store      Store
	dbPath     string
	cfg        config.Config
	forecaster pipeline.Forecaster
	now        func() time.Time

	// Data
	state    model.TrackerState
	revision int64
	loaded   bool
	loadErr  error

	// Pre-computed for the current state
	summary      model.Summary
	matches      []model.Match
	heroes       []model.HeroStats
	slots        []model.TimeOfDayStats
	days         []model.DailyStats
	history      []model.PTSPoint
	achievements []model.Achievement

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string
	statusErr bool
	histState historyState
	settings  settingsState

	// Action form (huh)
	form     *huh.Form
	formKind formKind
	formVals *formValues

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight   = 5
	minRefreshInterval = 2 * time.Second
)

// NewApp creates a new TUI app model backed by st. dbPath is only shown
// on the settings tab.
func NewApp(st Store, dbPath string, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refreshInterval := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < minRefreshInterval {
		refreshInterval = minRefreshInterval
	}

	return App{
		store:           st,
		dbPath:          dbPath,
		cfg:             cfg,
		forecaster:      pipeline.NewForecaster(cfg.Forecast.MinMatches),
		now:             time.Now,
		needSetup:       !config.Exists(),
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		spinner:         sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadStateCmd(a.store, -1),
		a.spinner.Tick,
		tickCmd(a.refreshInterval),
	)
}

func (a *App) recompute() {
	now := a.now()
	a.summary = pipeline.Summarize(a.state, now, a.forecaster)
	a.matches = pipeline.CanonicalMatches(a.state)
	a.heroes = pipeline.AggregateHeroes(a.matches)
	a.slots = pipeline.AggregateTimeOfDay(a.matches)
	a.days = pipeline.AggregateDays(a.state)
	a.history = pipeline.PTSHistory(a.state)
	a.achievements = pipeline.Achievements(a.state.CurrentPTS)

	if a.histState.cursor >= len(a.days) {
		a.histState.cursor = len(a.days) - 1
	}
	if a.histState.cursor < 0 {
		a.histState.cursor = 0
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.form != nil {
			a.form = a.form.WithWidth(formWidth(msg.Width))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabHistory && a.histState.cursor > 0 {
				a.histState.cursor--
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabHistory && a.histState.cursor < len(a.days)-1 {
				a.histState.cursor++
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if a.form != nil {
			if key == "esc" {
				a.form = nil
				a.setStatus("Cancelled", false)
				return a, nil
			}
			return a.updateActionForm(msg)
		}

		if a.activeTab == tabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if a.activeTab == tabSettings {
			switch key {
			case "j", "down":
				if a.settings.cursor < settingsFieldCount-1 {
					a.settings.cursor++
				}
				return a, nil
			case "k", "up":
				if a.settings.cursor > 0 {
					a.settings.cursor--
				}
				return a, nil
			case "enter":
				return a.settingsStartEdit()
			}
		}

		if a.activeTab == tabHistory {
			switch key {
			case "j", "down":
				if a.histState.cursor < len(a.days)-1 {
					a.histState.cursor++
				}
				return a, nil
			case "k", "up":
				if a.histState.cursor > 0 {
					a.histState.cursor--
				}
				return a, nil
			case "g":
				a.histState.cursor = 0
				return a, nil
			case "G":
				a.histState.cursor = max(len(a.days)-1, 0)
				return a, nil
			}
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "s":
			return a.openForm(formStart)
		case "m":
			return a.openForm(formMatch)
		case "e":
			return a.openForm(formEnd)
		case "t":
			return a.openForm(formTarget)
		case "D":
			return a, applyCmd(a.store, tracker.DiscardDay, "Day discarded")
		case "u":
			return a, undoCmd(a.store)
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, loadStateCmd(a.store, -1)
			}
			return a, nil
		case "R":
			a.autoRefresh = !a.autoRefresh
			cfg := loadConfigOrDefault()
			cfg.TUI.AutoRefresh = a.autoRefresh
			_ = config.Save(cfg)
			return a, nil
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case StateLoadedMsg:
		a.refreshing = false
		a.lastRefresh = a.now()
		if msg.Err != nil {
			a.loadErr = msg.Err
			a.loaded = true
			a.setStatus(msg.Err.Error(), true)
			return a, nil
		}
		first := !a.loaded
		a.loaded = true
		a.loadErr = nil
		if !msg.Unchanged {
			a.state = msg.State
			a.revision = msg.Revision
			a.recompute()
		}

		if first && a.needSetup {
			a.setupForm, a.setupVals = newSetupForm(a.cfg)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case stateSavedMsg:
		if msg.Err != nil {
			a.setStatus(msg.Err.Error(), true)
			if errors.Is(msg.Err, store.ErrConflict) {
				return a, loadStateCmd(a.store, -1)
			}
			return a, nil
		}
		a.state = msg.State
		a.revision = msg.Revision
		a.recompute()
		a.setStatus(msg.Note, false)
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(a.refreshInterval)}
		if a.loaded && a.autoRefresh && !a.refreshing && a.form == nil {
			a.refreshing = true
			cmds = append(cmds, loadStateCmd(a.store, a.revision))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks, etc.) to an open form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.form != nil {
		return a.updateActionForm(msg)
	}

	return a, nil
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

func (a App) openForm(kind formKind) (tea.Model, tea.Cmd) {
	a.formKind = kind
	a.form, a.formVals = newActionForm(kind, a.state, a.now())
	a.form = a.form.WithWidth(formWidth(a.width))
	a.setStatus("", false)
	return a, a.form.Init()
}

func (a App) updateActionForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind, vals := a.formKind, *a.formVals
		a.form = nil
		fn, note, err := buildTransition(kind, vals, a.now())
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		return a, applyCmd(a.store, fn, note)
	case huh.StateAborted:
		a.form = nil
		a.setStatus("Cancelled", false)
		return a, nil
	}

	return a, cmd
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		vals := *a.setupVals
		a.setupForm = nil
		a.needSetup = false
		if err := a.saveSetupConfig(vals); err != nil {
			a.setStatus("Could not save config: "+err.Error(), true)
		} else {
			a.setStatus("Saved to "+config.Path(), false)
		}
		if target := vals.targetPTS(); target > 0 && target != a.state.TargetPTS {
			return a, applyCmd(a.store, func(s model.TrackerState) (model.TrackerState, error) {
				return tracker.SetTarget(s, target)
			}, fmt.Sprintf("Target set to %d", target))
		}
		return a, nil
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}

	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func formWidth(termWidth int) int {
	return max(min(termWidth-8, 64), 30)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	if a.form != nil {
		return a.viewForm()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  ptstrack needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ ptstrack"))
	b.WriteString(subtitleStyle.Render(" · Dota 2 PTS tracker"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading tracker state..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(a.form.View()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Gold).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	type binding struct{ key, desc string }
	sections := []struct {
		title    string
		bindings []binding
	}{
		{"Navigation", []binding{
			{"o b y x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Navigate lists"},
			{"g G", "First / last day"},
		}},
		{"Tracking", []binding{
			{"s", "Start a game day"},
			{"m", "Record a match"},
			{"e", "End the game day"},
			{"D", "Discard the open day"},
			{"t", "Set target PTS"},
			{"u", "Undo last change"},
		}},
		{"General", []binding{
			{"r", "Reload state"},
			{"R", "Toggle auto-refresh"},
			{"Esc", "Cancel form"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.status, a.statusErr, a.autoRefresh)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabBreakdown:
		content = a.renderBreakdownTab(cw)
	case tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

const (
	tabOverview = iota
	tabBreakdown
	tabHistory
	tabSettings
)

type tickMsg struct{}

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

const storeTimeout = 5 * time.Second

// loadStateCmd reads the state. When known is a revision the App already
// holds and the store has not moved past it, the state is not re-read.
func loadStateCmd(st Store, known int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		rev, err := st.Revision(ctx)
		if err != nil {
			return StateLoadedMsg{Err: err}
		}
		if known >= 0 && rev == known {
			return StateLoadedMsg{Revision: rev, Unchanged: true}
		}
		state, err := st.Load(ctx)
		if err != nil {
			return StateLoadedMsg{Err: err}
		}
		return StateLoadedMsg{State: state, Revision: rev}
	}
}

// applyCmd runs fn through the store's optimistic update.
func applyCmd(st Store, fn transition, note string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		state, err := st.Update(ctx, fn)
		if err != nil {
			return stateSavedMsg{Err: err}
		}
		rev, err := st.Revision(ctx)
		if err != nil {
			return stateSavedMsg{Err: err}
		}
		return stateSavedMsg{State: state, Revision: rev, Note: note}
	}
}

func undoCmd(st Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		state, err := st.Undo(ctx)
		if err != nil {
			return stateSavedMsg{Err: err}
		}
		rev, err := st.Revision(ctx)
		if err != nil {
			return stateSavedMsg{Err: err}
		}
		return stateSavedMsg{State: state, Revision: rev, Note: "Undone"}
	}
}

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= limit {
		return s
	}
	return ansi.Truncate(s, limit, "…")
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background
// color so gaps between cards are filled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// one-column separator
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
