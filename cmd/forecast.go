package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/model"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Estimate the days left to reach the target PTS",
	RunE:  runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	state, err := loadState(cmd.Context())
	if err != nil {
		return err
	}

	o := forecaster().Estimate(state)

	fmt.Println()
	fmt.Println(cli.RenderTitle("FORECAST"))
	fmt.Println()
	fmt.Println(cli.RenderKV("Estimate", cli.RenderOutcome(o, false)))
	fmt.Println(cli.RenderKV("PTS needed", cli.FormatPTS(max(o.PTSNeeded, 0))))

	if o.SampleSize > 0 {
		fmt.Println(cli.RenderKV("Sample", fmt.Sprintf("%d matches", o.SampleSize)))
		fmt.Println(cli.RenderKV("Winrate", fmt.Sprintf("%.1f%%", o.Winrate*100)))
	}
	if o.Kind == model.OutcomeEstimate {
		fmt.Println(cli.RenderKV("PTS per match", fmt.Sprintf("%+.1f", o.ExpectedPerMatch)))
		fmt.Println(cli.RenderKV("Matches needed", cli.FormatNumber(int64(o.MatchesNeeded))))
		fmt.Println(cli.RenderKV("Matches per day", fmt.Sprintf("%.1f over %d days", o.AvgMatchesPerDay, o.CompletedDays)))
	}
	if o.Kind == model.OutcomeInsufficientData && o.Reason == model.ReasonSmallSample {
		fmt.Printf("\n  Play at least %d matches for an estimate.\n", forecaster().MinSampleSize)
	}
	fmt.Println()

	return nil
}
