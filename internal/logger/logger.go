// Package logger builds the zerolog loggers used by the CLI and daemon.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a level name to a zerolog level, falling back to warn.
func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

// New returns a human-readable logger on stderr for interactive commands.
func New(level string) zerolog.Logger {
	return NewConsole(os.Stderr, level)
}

// NewConsole returns a console logger writing to w.
func NewConsole(w io.Writer, level string) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(ParseLevel(level))
}

// NewJSON returns a structured JSON logger for the daemon.
func NewJSON(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(w).
		With().
		Timestamp().
		Str("service", "ptstrack").
		Logger().
		Level(ParseLevel(level))
}
