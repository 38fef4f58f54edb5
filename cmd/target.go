package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/tracker"
)

var targetCmd = &cobra.Command{
	Use:   "target <pts>",
	Short: "Set the target PTS",
	Args:  cobra.ExactArgs(1),
	RunE:  runTarget,
}

var setPTSCmd = &cobra.Command{
	Use:   "set-pts <pts>",
	Short: "Override the current PTS",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetPTS,
}

func init() {
	rootCmd.AddCommand(targetCmd)
	rootCmd.AddCommand(setPTSCmd)
}

func runTarget(cmd *cobra.Command, args []string) error {
	target, err := parsePTS(args[0])
	if err != nil {
		return err
	}

	state, err := updateState(cmd.Context(), func(s model.TrackerState) (model.TrackerState, error) {
		return tracker.SetTarget(s, target)
	})
	if err != nil {
		return err
	}

	fmt.Printf("  Target set to %s PTS (%s done)\n",
		cli.FormatPTS(state.TargetPTS),
		cli.FormatPercent(pipeline.ProgressPercent(state.CurrentPTS, state.TargetPTS)))
	return nil
}

func runSetPTS(cmd *cobra.Command, args []string) error {
	pts, err := parsePTS(args[0])
	if err != nil {
		return err
	}

	if _, err := updateState(cmd.Context(), func(s model.TrackerState) (model.TrackerState, error) {
		return tracker.SetCurrentPTS(s, pts), nil
	}); err != nil {
		return err
	}

	fmt.Printf("  Current PTS set to %s\n", cli.FormatPTS(pts))
	return nil
}
