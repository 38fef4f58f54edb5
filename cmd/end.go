package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/tracker"
)

var (
	endMatches int
	endWins    int
)

var endCmd = &cobra.Command{
	Use:   "end <pts>",
	Short: "Close the game day in progress at the given PTS",
	Long: `Close the game day in progress at the given PTS.

Pass --matches and --wins to record the day as a simple tally instead of
individual matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnd,
}

func init() {
	endCmd.Flags().IntVar(&endMatches, "matches", 0, "Matches played (records a tally)")
	endCmd.Flags().IntVar(&endWins, "wins", 0, "Matches won (with --matches)")
	rootCmd.AddCommand(endCmd)
}

func runEnd(cmd *cobra.Command, args []string) error {
	endPTS, err := parsePTS(args[0])
	if err != nil {
		return err
	}

	tally := cmd.Flags().Changed("matches") || cmd.Flags().Changed("wins")
	state, err := updateState(cmd.Context(), func(s model.TrackerState) (model.TrackerState, error) {
		if tally {
			return tracker.EndDaySimple(s, endPTS, endMatches, endWins)
		}
		return tracker.EndDay(s, endPTS)
	})
	switch {
	case errors.Is(err, tracker.ErrNoActiveDay):
		return errors.New("no game day in progress")
	case errors.Is(err, tracker.ErrDetailedDay):
		return errors.New("this day already has matches, end it without --matches/--wins")
	case err != nil:
		return err
	}

	day := state.Days[len(state.Days)-1]
	delta, _ := day.PTSChange()
	fmt.Printf("  Game day closed: %d matches, %dW %dL, %s PTS\n",
		day.Matches(), day.Wins(), day.Losses(), cli.RenderDelta(delta))
	fmt.Printf("  PTS %s\n", cli.FormatPTS(state.CurrentPTS))
	return nil
}
