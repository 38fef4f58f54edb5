package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/tracker"
)

var startCmd = &cobra.Command{
	Use:   "start <pts>",
	Short: "Start a game day at the given PTS",
	Example: `  ptstrack start 4200
  ptstrack start -- -150`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Drop the game day in progress without recording it",
	Args:  cobra.NoArgs,
	RunE:  runDiscard,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(discardCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	pts, err := parsePTS(args[0])
	if err != nil {
		return err
	}

	_, err = updateState(cmd.Context(), func(s model.TrackerState) (model.TrackerState, error) {
		return tracker.StartDay(s, pts, time.Now())
	})
	if errors.Is(err, tracker.ErrDayInProgress) {
		return errors.New("a game day is already in progress, end it with `ptstrack end <pts>` or drop it with `ptstrack discard`")
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Game day started at %s PTS\n", cli.FormatPTS(pts))
	return nil
}

func runDiscard(cmd *cobra.Command, _ []string) error {
	state, err := updateState(cmd.Context(), tracker.DiscardDay)
	if errors.Is(err, tracker.ErrNoActiveDay) {
		return errors.New("no game day in progress")
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Game day discarded, PTS back to %s\n", cli.FormatPTS(state.CurrentPTS))
	return nil
}
