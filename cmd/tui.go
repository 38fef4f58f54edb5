package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/theirongolddev/ptstrack/internal/tui"
	"github.com/theirongolddev/ptstrack/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	if err := requireTerminal("tui"); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	theme.SetActive(appCfg.Appearance.Theme)

	// Without this lipgloss may pick the Ascii profile and drop backgrounds.
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(st, dbPath(), appCfg)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// requireTerminal fails when stdin or stdout is not a terminal.
func requireTerminal(command string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("%s needs an interactive terminal", command)
	}
	return nil
}
