package model

import "time"

// WinrateStats holds match counts for one window.
type WinrateStats struct {
	Count   int
	Wins    int
	Percent int // round(wins/count*100), 0 when Count is 0
}

// Losses returns Count - Wins.
func (w WinrateStats) Losses() int { return w.Count - w.Wins }

// PeriodWinrates holds the four standard windows side by side.
type PeriodWinrates struct {
	Today   WinrateStats
	Week    WinrateStats
	Month   WinrateStats
	AllTime WinrateStats
}

// HeroStats holds aggregated results for a single hero.
type HeroStats struct {
	Hero    string
	Wins    int
	Losses  int
	Total   int
	Percent int
}

// TimeOfDayStats holds aggregated results for one time-of-day bucket.
type TimeOfDayStats struct {
	Slot    TimeOfDay
	Wins    int
	Losses  int
	Total   int
	Percent int
}

// DailyStats holds metrics for a single game day.
type DailyStats struct {
	ID        string
	Date      time.Time
	StartPTS  int
	EndPTS    *int
	Matches   int
	Wins      int
	Losses    int
	Winrate   int
	PTSChange int
	HasChange bool
	Detailed  bool
	Open      bool // the current, not yet closed day
}

// PTSPoint is one sample of the PTS history series.
type PTSPoint struct {
	Date time.Time
	PTS  int
}

// Achievement is a PTS milestone.
type Achievement struct {
	Threshold int
	Title     string
	Unlocked  bool
}

// Summary is the top-level dashboard aggregate.
type Summary struct {
	CurrentPTS      int
	TargetPTS       int
	ProgressPercent int
	ClosedDays      int
	DayOpen         bool
	Periods         PeriodWinrates
	Forecast        Outcome
}
