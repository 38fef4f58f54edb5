package model

import (
	"math"
	"time"
)

// DayRecord holds what was recorded for a game day. It is either a
// DetailedRecord or a SimpleRecord; a nil DayRecord means nothing has
// been recorded yet.
type DayRecord interface {
	MatchCount() int
	WinCount() int
	isDayRecord()
}

// DetailedRecord is a day logged match by match.
type DetailedRecord struct {
	Matches []Match
}

// MatchCount returns the number of logged matches.
func (r DetailedRecord) MatchCount() int { return len(r.Matches) }

// WinCount returns the number of won matches.
func (r DetailedRecord) WinCount() int {
	wins := 0
	for _, m := range r.Matches {
		if m.IsWin() {
			wins++
		}
	}
	return wins
}

func (DetailedRecord) isDayRecord() {}

// SimpleRecord is a day logged as summary counts.
type SimpleRecord struct {
	MatchesCount int
	Wins         int
}

// MatchCount returns the recorded match count.
func (r SimpleRecord) MatchCount() int { return r.MatchesCount }

// WinCount returns the recorded win count.
func (r SimpleRecord) WinCount() int { return r.Wins }

// Losses returns MatchesCount - Wins, never below zero.
func (r SimpleRecord) Losses() int {
	if l := r.MatchesCount - r.Wins; l > 0 {
		return l
	}
	return 0
}

func (SimpleRecord) isDayRecord() {}

// CurrentDay is the open, not yet closed game day.
type CurrentDay struct {
	ID       string
	Date     time.Time
	StartPTS int
	Record   DayRecord
}

// GameDay is a closed game day.
type GameDay struct {
	ID       string
	Date     time.Time
	StartPTS int
	EndPTS   *int
	Complete bool
	Record   DayRecord
}

// Matches returns the day's match count, 0 when nothing was recorded.
func (d GameDay) Matches() int { return recordMatches(d.Record) }

// Wins returns the day's win count.
func (d GameDay) Wins() int { return recordWins(d.Record) }

// Losses returns the day's loss count.
func (d GameDay) Losses() int { return losses(d.Record) }

// Winrate returns round(wins/matches*100), or 0 for an empty day.
func (d GameDay) Winrate() int { return Percent(d.Wins(), d.Matches()) }

// PTSChange returns EndPTS-StartPTS when the end score is known, otherwise
// the sum of per-match deltas of a detailed day. ok is false when neither
// is available.
func (d GameDay) PTSChange() (delta int, ok bool) {
	if d.EndPTS != nil {
		return *d.EndPTS - d.StartPTS, true
	}
	return matchDeltaSum(d.Record)
}

// Matches returns the open day's match count.
func (c CurrentDay) Matches() int { return recordMatches(c.Record) }

// Wins returns the open day's win count.
func (c CurrentDay) Wins() int { return recordWins(c.Record) }

// Losses returns the open day's loss count.
func (c CurrentDay) Losses() int { return losses(c.Record) }

// Winrate returns round(wins/matches*100), or 0 for an empty day.
func (c CurrentDay) Winrate() int { return Percent(c.Wins(), c.Matches()) }

// PTSChange sums per-match deltas recorded so far.
func (c CurrentDay) PTSChange() (int, bool) { return matchDeltaSum(c.Record) }

// IsSimple reports whether the open day holds summary counts.
func (c CurrentDay) IsSimple() bool {
	_, ok := c.Record.(SimpleRecord)
	return ok
}

// IsDetailed reports whether the open day holds individual matches.
func (c CurrentDay) IsDetailed() bool {
	_, ok := c.Record.(DetailedRecord)
	return ok
}

func recordMatches(r DayRecord) int {
	if r == nil {
		return 0
	}
	return r.MatchCount()
}

func recordWins(r DayRecord) int {
	if r == nil {
		return 0
	}
	return r.WinCount()
}

func losses(r DayRecord) int {
	if l := recordMatches(r) - recordWins(r); l > 0 {
		return l
	}
	return 0
}

func matchDeltaSum(r DayRecord) (int, bool) {
	dr, ok := r.(DetailedRecord)
	if !ok {
		return 0, false
	}
	sum := 0
	for _, m := range dr.Matches {
		if m.PTSChange != nil {
			sum += *m.PTSChange
		}
	}
	return sum, true
}

// Percent returns round(part/total*100), or 0 when total is not positive.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
