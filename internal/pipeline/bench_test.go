package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/ptstrack/internal/model"
)

// syntheticState builds a year of alternating simple and detailed days.
func syntheticState(days int) model.TrackerState {
	start := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	heroes := []string{"Pudge", "Invoker", "Lion", "Axe", "Lina", "Sniper", "Zeus"}

	state := model.TrackerState{CurrentPTS: 4000, TargetPTS: 10000}
	pts := 3000
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		day := model.GameDay{ID: fmt.Sprintf("day-%d", i), Date: date, StartPTS: pts, Complete: true}
		if i%2 == 0 {
			day.Record = model.SimpleRecord{MatchesCount: 8, Wins: 5}
			pts += 40
		} else {
			matches := make([]model.Match, 0, 8)
			for j := 0; j < 8; j++ {
				r := model.ResultLoss
				if j%3 != 0 {
					r = model.ResultWin
				}
				matches = append(matches, model.Match{
					Result:    r,
					Hero:      heroes[(i+j)%len(heroes)],
					TimeOfDay: model.TimeSlots[j%len(model.TimeSlots)],
					Date:      date.Add(time.Duration(j) * 40 * time.Minute),
				})
			}
			day.Record = model.DetailedRecord{Matches: matches}
			pts += 20
		}
		end := pts
		day.EndPTS = &end
		state.Days = append(state.Days, day)
	}
	return state
}

func BenchmarkCanonicalMatches(b *testing.B) {
	state := syntheticState(365)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CanonicalMatches(state)
	}
}

func BenchmarkAggregatePeriods(b *testing.B) {
	state := syntheticState(365)
	now := state.Days[len(state.Days)-1].Date
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregatePeriods(state, now)
	}
}

func BenchmarkTopHeroes(b *testing.B) {
	matches := CanonicalMatches(syntheticState(365))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = TopHeroes(AggregateHeroes(matches), 5)
	}
}

func BenchmarkEstimate(b *testing.B) {
	state := syntheticState(365)
	f := NewForecaster(DefaultMinSampleSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Estimate(state)
	}
}
