package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/config"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/tracker"
	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	if err := requireTerminal("setup"); err != nil {
		return err
	}
	cfg := appCfg

	target := strconv.Itoa(cfg.General.DefaultTarget)
	topHeroes := cfg.General.TopHeroes
	themeName := cfg.Appearance.Theme
	applyTarget := true

	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOpts[i] = huh.NewOption(t.Name, t.Name)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Target PTS").
				Description("The score you are working toward").
				Value(&target).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return tracker.ErrInvalidTarget
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Apply this target to the tracker now?").
				Value(&applyTarget),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Heroes to list").
				Options(
					huh.NewOption("Top 3", 3),
					huh.NewOption("Top 5", 5),
					huh.NewOption("Top 10", 10),
				).
				Value(&topHeroes),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeName),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	targetPTS, _ := strconv.Atoi(target)
	cfg.General.DefaultTarget = targetPTS
	cfg.General.TopHeroes = topHeroes
	cfg.Appearance.Theme = themeName

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if applyTarget {
		if _, err := updateState(cmd.Context(), func(s model.TrackerState) (model.TrackerState, error) {
			return tracker.SetTarget(s, targetPTS)
		}); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `ptstrack setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
