package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/store"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Restore the state from before the last change",
	Args:  cobra.NoArgs,
	RunE:  runUndo,
}

func init() {
	rootCmd.AddCommand(undoCmd)
}

func runUndo(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	state, err := st.Undo(cmd.Context())
	if errors.Is(err, store.ErrNoHistory) {
		return errors.New("nothing to undo")
	}
	if err != nil {
		return err
	}

	left, _ := st.HistoryLen(cmd.Context())
	day := "no day in progress"
	if state.Current != nil {
		day = fmt.Sprintf("day in progress with %d matches", state.Current.Matches())
	}
	fmt.Printf("  Restored: PTS %s, %d game days, %s\n",
		cli.FormatPTS(state.CurrentPTS), len(state.Days), day)
	progressf("  %d earlier states available\n", left)
	return nil
}
