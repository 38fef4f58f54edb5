// Package pipeline reduces tracker state into winrates, breakdowns and forecasts.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/ptstrack/internal/model"
)

// Window selects matches by date relative to a query instant.
type Window func(date time.Time) bool

// AllTime accepts every match.
func AllTime() Window {
	return func(time.Time) bool { return true }
}

// Today accepts matches on now's calendar date, in now's location.
func Today(now time.Time) Window {
	y, m, d := now.Date()
	loc := now.Location()
	return func(date time.Time) bool {
		dy, dm, dd := date.In(loc).Date()
		return dy == y && dm == m && dd == d
	}
}

// Since accepts matches dated at or after now minus the given number of days.
// The cutoff keeps now's time of day.
func Since(now time.Time, days int) Window {
	cutoff := now.AddDate(0, 0, -days)
	return func(date time.Time) bool {
		return !date.Before(cutoff)
	}
}

// Week accepts matches from the last 7 days.
func Week(now time.Time) Window { return Since(now, 7) }

// Month accepts matches from the last 30 days.
func Month(now time.Time) Window { return Since(now, 30) }

// WindowedWinrate counts matches and wins accepted by w.
func WindowedWinrate(matches []model.Match, w Window) model.WinrateStats {
	var stats model.WinrateStats
	for _, m := range matches {
		if w != nil && !w(m.Date) {
			continue
		}
		stats.Count++
		if m.IsWin() {
			stats.Wins++
		}
	}
	stats.Percent = model.Percent(stats.Wins, stats.Count)
	return stats
}

// AggregatePeriods computes today, week, month and all-time winrates.
func AggregatePeriods(state model.TrackerState, now time.Time) model.PeriodWinrates {
	matches := CanonicalMatches(state)
	return model.PeriodWinrates{
		Today:   WindowedWinrate(matches, Today(now)),
		Week:    WindowedWinrate(matches, Week(now)),
		Month:   WindowedWinrate(matches, Month(now)),
		AllTime: WindowedWinrate(matches, AllTime()),
	}
}

// AggregateHeroes groups matches by hero in first-encountered order.
func AggregateHeroes(matches []model.Match) []model.HeroStats {
	index := make(map[string]int)
	var heroes []model.HeroStats

	for _, m := range matches {
		name := m.HeroName()
		i, ok := index[name]
		if !ok {
			i = len(heroes)
			index[name] = i
			heroes = append(heroes, model.HeroStats{Hero: name})
		}
		hs := &heroes[i]
		hs.Total++
		if m.IsWin() {
			hs.Wins++
		} else {
			hs.Losses++
		}
	}

	for i := range heroes {
		heroes[i].Percent = model.Percent(heroes[i].Wins, heroes[i].Total)
	}
	return heroes
}

// TopHeroes returns the n heroes with the most matches. Ties keep their
// original order. n <= 0 returns every hero sorted.
func TopHeroes(stats []model.HeroStats, n int) []model.HeroStats {
	sorted := make([]model.HeroStats, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total > sorted[j].Total
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// AggregateTimeOfDay always returns the four buckets in model.TimeSlots order.
func AggregateTimeOfDay(matches []model.Match) []model.TimeOfDayStats {
	buckets := make([]model.TimeOfDayStats, len(model.TimeSlots))
	index := make(map[model.TimeOfDay]int, len(model.TimeSlots))
	for i, slot := range model.TimeSlots {
		buckets[i].Slot = slot
		index[slot] = i
	}

	for _, m := range matches {
		i, ok := index[m.Slot()]
		if !ok {
			i = index[model.Morning]
		}
		buckets[i].Total++
		if m.IsWin() {
			buckets[i].Wins++
		} else {
			buckets[i].Losses++
		}
	}

	for i := range buckets {
		buckets[i].Percent = model.Percent(buckets[i].Wins, buckets[i].Total)
	}
	return buckets
}

// ProgressPercent returns current/target*100 clamped to [0, 100], or 0 when
// there is no positive target.
func ProgressPercent(current, target int) int {
	if target <= 0 {
		return 0
	}
	return clamp(model.Percent(current, target), 0, 100)
}

// AggregateDays returns one row per closed day, most recent first, with the
// open day on top when there is one.
func AggregateDays(state model.TrackerState) []model.DailyStats {
	days := make([]model.DailyStats, 0, len(state.Days)+1)
	for _, d := range state.Days {
		ds := model.DailyStats{
			ID:       d.ID,
			Date:     d.Date,
			StartPTS: d.StartPTS,
			EndPTS:   d.EndPTS,
			Matches:  d.Matches(),
			Wins:     d.Wins(),
			Losses:   d.Losses(),
			Winrate:  d.Winrate(),
		}
		_, ds.Detailed = d.Record.(model.DetailedRecord)
		ds.PTSChange, ds.HasChange = d.PTSChange()
		days = append(days, ds)
	}

	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})

	if c := state.Current; c != nil {
		open := model.DailyStats{
			ID:       c.ID,
			Date:     c.Date,
			StartPTS: c.StartPTS,
			Matches:  c.Matches(),
			Wins:     c.Wins(),
			Losses:   c.Losses(),
			Winrate:  c.Winrate(),
			Detailed: c.IsDetailed(),
			Open:     true,
		}
		open.PTSChange, open.HasChange = c.PTSChange()
		days = append([]model.DailyStats{open}, days...)
	}
	return days
}

// PTSHistory returns the end score of each closed day in stored order.
// Days closed without a known end score are skipped.
func PTSHistory(state model.TrackerState) []model.PTSPoint {
	var points []model.PTSPoint
	for _, d := range state.Days {
		if d.EndPTS == nil {
			continue
		}
		points = append(points, model.PTSPoint{Date: d.Date, PTS: *d.EndPTS})
	}
	return points
}

// FilterByHero returns matches played on heroes whose name contains hero.
func FilterByHero(matches []model.Match, hero string) []model.Match {
	if hero == "" {
		return matches
	}
	var result []model.Match
	for _, m := range matches {
		if containsIgnoreCase(m.HeroName(), hero) {
			result = append(result, m)
		}
	}
	return result
}

// FilterBySlot returns matches in the given time-of-day bucket.
func FilterBySlot(matches []model.Match, slot model.TimeOfDay) []model.Match {
	var result []model.Match
	for _, m := range matches {
		if m.Slot() == slot {
			result = append(result, m)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Summarize builds the dashboard aggregate for state at now.
func Summarize(state model.TrackerState, now time.Time, f Forecaster) model.Summary {
	return model.Summary{
		CurrentPTS:      state.CurrentPTS,
		TargetPTS:       state.TargetPTS,
		ProgressPercent: ProgressPercent(state.CurrentPTS, state.TargetPTS),
		ClosedDays:      len(state.Days),
		DayOpen:         state.Current != nil,
		Periods:         AggregatePeriods(state, now),
		Forecast:        f.Estimate(state),
	}
}
