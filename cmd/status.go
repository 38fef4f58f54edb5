package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the game day in progress and its matches",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	state, err := loadState(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println()
	cur := state.Current
	if cur == nil {
		fmt.Println("  No game day in progress.")
		fmt.Printf("  Current PTS: %s. Start one with `ptstrack start <pts>`.\n", cli.FormatPTS(state.CurrentPTS))
		fmt.Println()
		return nil
	}

	fmt.Println(cli.RenderTitle("GAME DAY " + cli.FormatDate(cur.Date)))
	fmt.Println()
	fmt.Println(cli.RenderKV("Start PTS", cli.FormatPTS(cur.StartPTS)))
	fmt.Println(cli.RenderKV("Current PTS", cli.FormatPTS(state.CurrentPTS)))
	if delta, ok := cur.PTSChange(); ok {
		fmt.Println(cli.RenderKV("Change", cli.RenderDelta(delta)))
	}
	fmt.Println(cli.RenderKV("Record", fmt.Sprintf("%dW %dL (%s)", cur.Wins(), cur.Losses(), cli.FormatPercent(cur.Winrate()))))

	if cur.IsSimple() {
		fmt.Println()
		fmt.Println("  Summary counts only; close the day with `ptstrack end <pts>`.")
		fmt.Println()
		return nil
	}

	matches := pipeline.NormalizeCurrent(*cur)
	if len(matches) == 0 {
		fmt.Println()
		fmt.Println("  No matches yet. Add one with `ptstrack match --result win`.")
		fmt.Println()
		return nil
	}

	rows := make([][]string, len(matches))
	for i, m := range matches {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			resultLabel(m.Result),
			m.HeroName(),
			cli.FormatSlot(m.Slot()),
			cli.FormatMinutes(m.Duration),
			matchDeltaLabel(m.PTSChange),
		}
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Matches",
		Headers: []string{"#", "Result", "Hero", "Time", "Duration", "PTS"},
		Rows:    rows,
	}))
	return nil
}

func matchDeltaLabel(delta *int) string {
	if delta == nil {
		return "-"
	}
	return cli.FormatDelta(*delta)
}
