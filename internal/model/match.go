// Package model defines domain types for ptstrack days, matches and metrics.
package model

import (
	"strings"
	"time"
)

// Result is the outcome of a single match.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

// Valid reports whether r is one of the two known results.
func (r Result) Valid() bool {
	return r == ResultWin || r == ResultLoss
}

// ParseResult accepts "win"/"loss" and the short forms "w"/"l".
func ParseResult(s string) (Result, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "win", "w":
		return ResultWin, true
	case "loss", "l", "lose":
		return ResultLoss, true
	}
	return "", false
}

// TimeOfDay is the coarse slot a match was played in.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"   // 06-12
	Afternoon TimeOfDay = "afternoon" // 12-18
	Evening   TimeOfDay = "evening"   // 18-24
	Night     TimeOfDay = "night"     // 00-06
)

// TimeSlots lists the four buckets in display order.
var TimeSlots = []TimeOfDay{Morning, Afternoon, Evening, Night}

// ParseTimeOfDay returns the slot for s. Empty input maps to Morning.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Morning, true
	}
	for _, slot := range TimeSlots {
		if string(slot) == s {
			return slot, true
		}
	}
	return "", false
}

// SlotForHour maps a clock hour to its time-of-day bucket.
func SlotForHour(hour int) TimeOfDay {
	switch {
	case hour < 6:
		return Night
	case hour < 12:
		return Morning
	case hour < 18:
		return Afternoon
	default:
		return Evening
	}
}

// UnspecifiedHero is reported for matches recorded without a hero.
const UnspecifiedHero = "unspecified"

// Match is one completed game.
type Match struct {
	Result    Result
	PTSChange *int // only detailed entries carry a per-match delta
	Hero      string
	TimeOfDay TimeOfDay
	Duration  int // minutes, 0 when not recorded
	Date      time.Time
}

// HeroName returns the hero, or UnspecifiedHero when none was recorded.
func (m Match) HeroName() string {
	if m.Hero == "" {
		return UnspecifiedHero
	}
	return m.Hero
}

// Slot returns the match's time-of-day bucket, defaulting to Morning.
func (m Match) Slot() TimeOfDay {
	if m.TimeOfDay == "" {
		return Morning
	}
	return m.TimeOfDay
}

// IsWin reports whether the match was won.
func (m Match) IsWin() bool {
	return m.Result == ResultWin
}
