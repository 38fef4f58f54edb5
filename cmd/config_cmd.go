// Package cmd implements the ptstrack CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    State db:        %s\n", dbPath())
	fmt.Printf("    Default target:  %d\n", cfg.General.DefaultTarget)
	fmt.Printf("    Top heroes:      %d\n", cfg.General.TopHeroes)
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Min matches:     %d\n", cfg.Forecast.MinMatches)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:         %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll interval:   %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Events buffer:   %d\n", cfg.Daemon.EventsBuffer)
	if len(cfg.Daemon.AllowedOrigins) > 0 {
		fmt.Printf("    CORS origins:    %s\n", strings.Join(cfg.Daemon.AllowedOrigins, ", "))
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh:    %t\n", cfg.TUI.AutoRefresh)
	fmt.Printf("    Refresh every:   %ds\n", cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", config.LogLevel(cfg))
	fmt.Println()

	fmt.Println("  Run `ptstrack setup` to reconfigure.")
	return nil
}
