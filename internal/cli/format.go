// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/ptstrack/internal/model"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPTS formats a score with separators.
func FormatPTS(pts int) string {
	return FormatNumber(int64(pts))
}

// FormatDelta formats a PTS change with an explicit sign.
// e.g., 25 -> "+25", -18 -> "-18", 0 -> "0"
func FormatDelta(delta int) string {
	if delta > 0 {
		return "+" + FormatPTS(delta)
	}
	return FormatPTS(delta)
}

// FormatPercent formats a whole-number percentage.
func FormatPercent(pct int) string {
	return strconv.Itoa(pct) + "%"
}

// FormatWinrate formats a window as "67% (2W 1L)", or "-" when empty.
func FormatWinrate(w model.WinrateStats) string {
	if w.Count == 0 {
		return "-"
	}
	return fmt.Sprintf("%d%% (%dW %dL)", w.Percent, w.Wins, w.Losses())
}

// FormatMinutes formats a match duration in minutes.
// e.g., 75 -> "1h 15m", 42 -> "42m", 0 -> "-"
func FormatMinutes(mins int) string {
	if mins <= 0 {
		return "-"
	}
	if h := mins / 60; h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}

// FormatDate formats a day date in local time, "-" when unknown.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// FormatSlot returns the display label of a time-of-day bucket.
func FormatSlot(slot model.TimeOfDay) string {
	switch slot {
	case model.Morning:
		return "Morning (06-12)"
	case model.Afternoon:
		return "Afternoon (12-18)"
	case model.Evening:
		return "Evening (18-24)"
	case model.Night:
		return "Night (00-06)"
	}
	return string(slot)
}

// FormatOutcome renders a forecast for humans, with the figures behind an
// estimate when explain is set.
func FormatOutcome(o model.Outcome, explain bool) string {
	if o.Kind != model.OutcomeEstimate || !explain {
		return o.String()
	}
	return fmt.Sprintf("%s (%d matches at %+.1f PTS, %.1f matches/day)",
		o.String(), o.MatchesNeeded, o.ExpectedPerMatch, o.AvgMatchesPerDay)
}
