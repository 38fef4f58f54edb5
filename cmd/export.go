package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the tracker document as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the tracker state with a JSON document (- reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	data, err := st.Export(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 0 || args[0] == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	progressf("  Exported to %s\n", args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := st.Import(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}

	fmt.Printf("  Imported %d game days, PTS %d / %d\n",
		len(res.State.Days), res.State.CurrentPTS, res.State.TargetPTS)
	if res.Rejected > 0 {
		fmt.Fprintf(os.Stderr, "  %d matches with an unknown result were dropped\n", res.Rejected)
	}
	if res.Clamped > 0 {
		fmt.Fprintf(os.Stderr, "  %d days had out-of-range counts corrected\n", res.Clamped)
	}
	if res.BadDates > 0 {
		fmt.Fprintf(os.Stderr, "  %d dates could not be read\n", res.BadDates)
	}
	return nil
}
