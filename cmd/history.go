package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Game day history with a PTS trend",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 30, "Number of days to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	state, err := loadState(cmd.Context())
	if err != nil {
		return err
	}

	days := pipeline.AggregateDays(state)
	if len(days) == 0 {
		fmt.Println("\n  No game days recorded yet.")
		return nil
	}
	if historyLimit > 0 && len(days) > historyLimit {
		days = days[:historyLimit]
	}

	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			dayLabel(d),
			cli.FormatPTS(d.StartPTS),
			endLabel(d),
			fmt.Sprintf("%d", d.Matches),
			fmt.Sprintf("%dW %dL", d.Wins, d.Losses),
			dayWinrate(d),
			changeLabel(d),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("GAME DAYS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Start", "End", "Games", "Record", "Winrate", "PTS"},
		Rows:    rows,
	}))

	points := pipeline.PTSHistory(state)
	if len(points) > 1 {
		values := make([]int, len(points))
		for i, p := range points {
			values[i] = p.PTS
		}
		fmt.Printf("\n  PTS trend  %s  %s -> %s\n",
			cli.RenderSparkline(values),
			cli.FormatPTS(values[0]),
			cli.FormatPTS(values[len(values)-1]))
	}
	fmt.Println()

	return nil
}

func dayLabel(d model.DailyStats) string {
	label := fmt.Sprintf("%s %s", cli.FormatDate(d.Date), cli.FormatDayOfWeek(int(d.Date.Local().Weekday())))
	if d.Open {
		label += " *"
	}
	return label
}

func endLabel(d model.DailyStats) string {
	if d.EndPTS == nil {
		return "-"
	}
	return cli.FormatPTS(*d.EndPTS)
}

func dayWinrate(d model.DailyStats) string {
	if d.Matches == 0 {
		return "-"
	}
	return cli.FormatPercent(d.Winrate)
}

func changeLabel(d model.DailyStats) string {
	if !d.HasChange {
		return "-"
	}
	return cli.RenderDelta(d.PTSChange)
}
