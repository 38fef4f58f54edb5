package tui

import (
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/ptstrack/internal/config"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

// setupValues holds the first-run wizard answers. The form writes through
// pointers into this struct, so it lives on the heap behind App.
type setupValues struct {
	target     string
	topHeroes  int
	minMatches int
	theme      string
}

func (v setupValues) targetPTS() int {
	n, err := parseInt(v.target)
	if err != nil {
		return 0
	}
	return n
}

// newSetupForm builds the first-run wizard seeded from cfg.
func newSetupForm(cfg config.Config) (*huh.Form, *setupValues) {
	vals := &setupValues{
		target:     strconv.Itoa(cfg.General.DefaultTarget),
		topHeroes:  cfg.General.TopHeroes,
		minMatches: cfg.Forecast.MinMatches,
		theme:      cfg.Appearance.Theme,
	}

	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOpts[i] = huh.NewOption(t.Name, t.Name)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to ptstrack").
				Description("Track your Dota 2 PTS one game day at a time.\nA few questions and you're set."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Target PTS").
				Description("The score you are working toward").
				Value(&vals.target).
				Validate(validateTarget),
			huh.NewSelect[int]().
				Title("Heroes to list").
				Options(
					huh.NewOption("Top 3", 3),
					huh.NewOption("Top 5", 5),
					huh.NewOption("Top 10", 10),
				).
				Value(&vals.topHeroes),
			huh.NewSelect[int]().
				Title("Matches needed before forecasting").
				Options(
					huh.NewOption("5 matches", 5),
					huh.NewOption("10 matches", 10),
					huh.NewOption("20 matches", 20),
				).
				Value(&vals.minMatches),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)

	return form, vals
}

// saveSetupConfig applies the wizard answers to the running dashboard and
// writes them to the config file.
func (a *App) saveSetupConfig(vals setupValues) error {
	cfg := loadConfigOrDefault()

	if target := vals.targetPTS(); target > 0 {
		cfg.General.DefaultTarget = target
	}
	if vals.topHeroes > 0 {
		cfg.General.TopHeroes = vals.topHeroes
	}
	if vals.minMatches > 0 {
		cfg.Forecast.MinMatches = vals.minMatches
	}
	if theme.Valid(vals.theme) {
		cfg.Appearance.Theme = vals.theme
		theme.SetActive(vals.theme)
	}

	a.cfg = cfg
	a.forecaster = pipeline.NewForecaster(cfg.Forecast.MinMatches)
	a.recompute()
	return config.Save(cfg)
}
