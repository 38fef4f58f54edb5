package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
)

var timeOfDayCmd = &cobra.Command{
	Use:     "timeofday",
	Aliases: []string{"tod"},
	Short:   "Winrate by time of day",
	RunE:    runTimeOfDay,
}

func init() {
	rootCmd.AddCommand(timeOfDayCmd)
}

func runTimeOfDay(cmd *cobra.Command, _ []string) error {
	state, err := loadState(cmd.Context())
	if err != nil {
		return err
	}

	stats := pipeline.AggregateTimeOfDay(pipeline.CanonicalMatches(state))

	maxTotal := 0
	for _, s := range stats {
		maxTotal = max(maxTotal, s.Total)
	}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rate := "-"
		if s.Total > 0 {
			rate = cli.FormatPercent(s.Percent)
		}
		rows = append(rows, []string{
			cli.FormatSlot(s.Slot),
			fmt.Sprintf("%d", s.Total),
			fmt.Sprintf("%d", s.Wins),
			fmt.Sprintf("%d", s.Losses),
			rate,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("TIME OF DAY"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Slot", "Games", "W", "L", "Winrate"},
		Rows:    rows,
	}))

	fmt.Println()
	for _, s := range stats {
		fmt.Println(cli.RenderHorizontalBar(cli.FormatSlot(s.Slot), float64(s.Total), float64(maxTotal), 30))
	}
	fmt.Println()

	return nil
}
