package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "PTS milestones reached so far",
	RunE:  runAchievements,
}

func init() {
	rootCmd.AddCommand(achievementsCmd)
}

func runAchievements(cmd *cobra.Command, _ []string) error {
	state, err := loadState(cmd.Context())
	if err != nil {
		return err
	}

	list := pipeline.Achievements(state.CurrentPTS)
	unlocked := lipgloss.NewStyle().Foreground(cli.ColorGreen)
	locked := lipgloss.NewStyle().Foreground(cli.ColorTextDim)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ACHIEVEMENTS  %d/%d",
		pipeline.UnlockedCount(list), len(list))))
	fmt.Println()

	for _, a := range list {
		line := fmt.Sprintf("%-14s %s PTS", a.Title, cli.FormatPTS(a.Threshold))
		if a.Unlocked {
			fmt.Printf("  %s %s\n", unlocked.Render("✓"), unlocked.Render(line))
		} else {
			remaining := a.Threshold - state.CurrentPTS
			fmt.Printf("  %s %s  %s\n", locked.Render("·"), locked.Render(line),
				locked.Render(fmt.Sprintf("(%s to go)", cli.FormatPTS(remaining))))
		}
	}
	fmt.Println()

	return nil
}
