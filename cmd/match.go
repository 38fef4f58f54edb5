package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/tracker"
)

var (
	matchResult   string
	matchHero     string
	matchPTS      int
	matchTime     string
	matchDuration int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Add a match to the game day in progress",
	Example: `  ptstrack match --result win --hero Pudge
  ptstrack match -r loss --pts -25 --time night --duration 48`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchResult, "result", "r", "", "Match result: win or loss")
	matchCmd.Flags().StringVar(&matchHero, "hero", "", "Hero played")
	matchCmd.Flags().IntVar(&matchPTS, "pts", 0, "PTS change (default +20 for a win, -20 for a loss)")
	matchCmd.Flags().StringVar(&matchTime, "time", "", "Time of day: morning, afternoon, evening, night (default: from the clock)")
	matchCmd.Flags().IntVar(&matchDuration, "duration", 0, "Match duration in minutes")
	_ = matchCmd.MarkFlagRequired("result")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	result, ok := model.ParseResult(matchResult)
	if !ok {
		return fmt.Errorf("%w: %q", tracker.ErrInvalidResult, matchResult)
	}

	now := time.Now()
	in := tracker.MatchInput{
		Result:    result,
		PTSChange: defaultDelta(result),
		Hero:      matchHero,
		TimeOfDay: model.TimeOfDay(matchTime),
		Duration:  matchDuration,
	}
	if cmd.Flags().Changed("pts") {
		in.PTSChange = matchPTS
	}
	if matchTime == "" {
		in.TimeOfDay = model.SlotForHour(now.Hour())
	}

	state, err := updateState(cmd.Context(), func(s model.TrackerState) (model.TrackerState, error) {
		return tracker.AddMatch(s, in, now)
	})
	switch {
	case errors.Is(err, tracker.ErrNoActiveDay):
		return errors.New("no game day in progress, start one with `ptstrack start <pts>`")
	case errors.Is(err, tracker.ErrSimpleDay):
		return errors.New("today was recorded as a tally, finish it with `ptstrack end <pts> --matches N --wins W`")
	case err != nil:
		return err
	}

	cur := state.Current
	fmt.Printf("  %s %s  %s\n",
		resultLabel(result), heroLabel(in.Hero), cli.RenderDelta(in.PTSChange))
	fmt.Printf("  Today %s  PTS %s\n",
		cli.RenderWinrate(pipeline.WindowedWinrate(pipeline.NormalizeCurrent(*cur), pipeline.AllTime())),
		cli.FormatPTS(state.CurrentPTS))
	return nil
}

func defaultDelta(r model.Result) int {
	if r == model.ResultWin {
		return pipeline.PTSPerWin
	}
	return -pipeline.PTSPerLoss
}

func resultLabel(r model.Result) string {
	if r == model.ResultWin {
		return "Win "
	}
	return "Loss"
}

func heroLabel(hero string) string {
	if hero == "" {
		return model.UnspecifiedHero
	}
	return hero
}
