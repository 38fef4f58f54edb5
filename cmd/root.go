package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ptstrack/internal/config"
	"github.com/theirongolddev/ptstrack/internal/logger"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/store"
)

var (
	flagDB       string
	flagQuiet    bool
	flagLogLevel string
)

// Loaded once per invocation by PersistentPreRunE.
var (
	appCfg = config.DefaultConfig()
	appLog = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:               "ptstrack",
	Short:             "Dota 2 PTS progress tracker",
	Long:              "Track game days, match results and PTS, and forecast the days left to your target.",
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Path to the SQLite state file (default: XDG data dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func loadRuntime(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appCfg = cfg

	level := config.LogLevel(cfg)
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	appLog = logger.New(level)
	return nil
}

func dbPath() string {
	if flagDB != "" {
		return flagDB
	}
	return config.DBPath(appCfg)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(dbPath(), appLog)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}
	return st, nil
}

// loadState is the shared read path used by the report commands.
func loadState(ctx context.Context) (model.TrackerState, error) {
	st, err := openStore()
	if err != nil {
		return model.TrackerState{}, err
	}
	defer func() { _ = st.Close() }()
	return st.Load(ctx)
}

// updateState applies a tracker transition and persists the result.
func updateState(ctx context.Context, fn func(model.TrackerState) (model.TrackerState, error)) (model.TrackerState, error) {
	st, err := openStore()
	if err != nil {
		return model.TrackerState{}, err
	}
	defer func() { _ = st.Close() }()

	state, err := st.Update(ctx, fn)
	if errors.Is(err, store.ErrConflict) {
		return state, errors.New("state was changed by another ptstrack process, try again")
	}
	return state, err
}

func forecaster() pipeline.Forecaster {
	return pipeline.NewForecaster(appCfg.Forecast.MinMatches)
}

// parsePTS accepts any whole number. Pass negative values after "--".
func parsePTS(arg string) (int, error) {
	pts, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid PTS %q: must be a whole number", arg)
	}
	return pts, nil
}

func progressf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
