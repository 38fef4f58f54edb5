package pipeline

import (
	"time"

	"github.com/theirongolddev/ptstrack/internal/model"
)

// NormalizeRecord expands a day record into canonical matches. Detailed
// records return a copy of their matches; simple records synthesize wins
// first, then losses, all dated at date. A nil record yields nothing.
func NormalizeRecord(rec model.DayRecord, date time.Time) []model.Match {
	switch r := rec.(type) {
	case model.DetailedRecord:
		out := make([]model.Match, len(r.Matches))
		copy(out, r.Matches)
		return out
	case model.SimpleRecord:
		total := max(r.MatchesCount, 0)
		wins := clamp(r.Wins, 0, total)
		out := make([]model.Match, 0, total)
		for i := 0; i < wins; i++ {
			out = append(out, model.Match{Result: model.ResultWin, Date: date})
		}
		for i := wins; i < total; i++ {
			out = append(out, model.Match{Result: model.ResultLoss, Date: date})
		}
		return out
	}
	return nil
}

// NormalizeDay returns the canonical matches of a closed day.
func NormalizeDay(d model.GameDay) []model.Match {
	return NormalizeRecord(d.Record, d.Date)
}

// NormalizeCurrent returns the canonical matches of the open day.
func NormalizeCurrent(c model.CurrentDay) []model.Match {
	return NormalizeRecord(c.Record, c.Date)
}

// CanonicalMatches concatenates closed days in stored order, followed by
// the open day if there is one.
func CanonicalMatches(state model.TrackerState) []model.Match {
	n := 0
	for _, d := range state.Days {
		n += max(d.Matches(), 0)
	}
	if state.Current != nil {
		n += max(state.Current.Matches(), 0)
	}

	matches := make([]model.Match, 0, n)
	for _, d := range state.Days {
		matches = append(matches, NormalizeDay(d)...)
	}
	if state.Current != nil {
		matches = append(matches, NormalizeCurrent(*state.Current)...)
	}
	return matches
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
