package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/tracker"
)

var (
	heroesTop    int
	heroesFilter string
	heroesSlot   string
)

var heroesCmd = &cobra.Command{
	Use:   "heroes",
	Short: "Most played heroes with winrates",
	RunE:  runHeroes,
}

func init() {
	heroesCmd.Flags().IntVarP(&heroesTop, "top", "t", 0, "Number of heroes to show (default from config, 0 in config shows all)")
	heroesCmd.Flags().StringVar(&heroesFilter, "hero", "", "Filter to hero (substring match)")
	heroesCmd.Flags().StringVar(&heroesSlot, "time", "", "Only matches from this time of day")
	rootCmd.AddCommand(heroesCmd)
}

func runHeroes(cmd *cobra.Command, _ []string) error {
	state, err := loadState(cmd.Context())
	if err != nil {
		return err
	}

	matches := pipeline.CanonicalMatches(state)
	if heroesFilter != "" {
		matches = pipeline.FilterByHero(matches, heroesFilter)
	}
	if heroesSlot != "" {
		slot, ok := model.ParseTimeOfDay(heroesSlot)
		if !ok {
			return fmt.Errorf("%w: %q", tracker.ErrInvalidTimeOfDay, heroesSlot)
		}
		matches = pipeline.FilterBySlot(matches, slot)
	}
	if len(matches) == 0 {
		fmt.Println("\n  No matches found.")
		return nil
	}

	n := appCfg.General.TopHeroes
	if cmd.Flags().Changed("top") {
		n = heroesTop
	}
	stats := pipeline.TopHeroes(pipeline.AggregateHeroes(matches), n)

	var maxTotal float64
	for _, h := range stats {
		maxTotal = max(maxTotal, float64(h.Total))
	}

	rows := make([][]string, 0, len(stats))
	for i, h := range stats {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			h.Hero,
			fmt.Sprintf("%d", h.Total),
			fmt.Sprintf("%d", h.Wins),
			fmt.Sprintf("%d", h.Losses),
			cli.FormatPercent(h.Percent),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("HEROES"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"#", "Hero", "Games", "W", "L", "Winrate"},
		Rows:    rows,
	}))

	fmt.Println()
	for _, h := range stats {
		fmt.Println(cli.RenderHorizontalBar(h.Hero, float64(h.Total), maxTotal, 30))
	}
	fmt.Println()

	return nil
}
