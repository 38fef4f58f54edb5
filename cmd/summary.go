package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "PTS progress, winrates and forecast",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	state, err := loadState(cmd.Context())
	if err != nil {
		return err
	}

	sum := pipeline.Summarize(state, time.Now(), forecaster())

	fmt.Println()
	fmt.Println(cli.RenderTitle("PTS TRACKER"))
	fmt.Println()

	fmt.Println(cli.RenderKV("Current PTS", cli.FormatPTS(sum.CurrentPTS)))
	fmt.Println(cli.RenderKV("Target PTS", cli.FormatPTS(sum.TargetPTS)))
	fmt.Println(cli.RenderKV("Progress", fmt.Sprintf("%s  %s",
		cli.RenderProgressBar(sum.CurrentPTS, sum.TargetPTS, 30),
		cli.FormatPercent(sum.ProgressPercent))))
	fmt.Println(cli.RenderKV("Forecast", cli.RenderOutcome(sum.Forecast, false)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Winrate",
		Headers: []string{"Period", "Winrate", "Matches"},
		Rows: [][]string{
			{"Today", cli.RenderWinrate(sum.Periods.Today), fmt.Sprint(sum.Periods.Today.Count)},
			{"Last 7 days", cli.RenderWinrate(sum.Periods.Week), fmt.Sprint(sum.Periods.Week.Count)},
			{"Last 30 days", cli.RenderWinrate(sum.Periods.Month), fmt.Sprint(sum.Periods.Month.Count)},
			{"All time", cli.RenderWinrate(sum.Periods.AllTime), fmt.Sprint(sum.Periods.AllTime.Count)},
		},
	}))

	if state.Current != nil {
		cur := state.Current
		delta, _ := cur.PTSChange()
		fmt.Printf("\n  Day in progress since %s: %dW %dL  %s\n",
			cur.Date.Local().Format("15:04"), cur.Wins(), cur.Losses(), cli.RenderDelta(delta))
	} else if sum.ClosedDays == 0 {
		fmt.Println("\n  No game days yet. Start one with `ptstrack start <pts>`.")
	}
	fmt.Println()

	return nil
}
