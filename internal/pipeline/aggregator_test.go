package pipeline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/theirongolddev/ptstrack/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func match(result model.Result, hero string, slot model.TimeOfDay, date time.Time) model.Match {
	return model.Match{Result: result, Hero: hero, TimeOfDay: slot, Date: date}
}

func intp(v int) *int { return &v }

func simpleDay(date time.Time, start, end, matches, wins int) model.GameDay {
	return model.GameDay{
		ID:       date.Format("20060102"),
		Date:     date,
		StartPTS: start,
		EndPTS:   intp(end),
		Complete: true,
		Record:   model.SimpleRecord{MatchesCount: matches, Wins: wins},
	}
}

func TestNormalizeSimpleDay(t *testing.T) {
	date := mustDate(t, "2025-06-01T18:00:00Z")
	for m := 0; m <= 6; m++ {
		for w := 0; w <= m; w++ {
			got := NormalizeRecord(model.SimpleRecord{MatchesCount: m, Wins: w}, date)
			if len(got) != m {
				t.Fatalf("m=%d w=%d: len = %d", m, w, len(got))
			}
			wins := 0
			for i, match := range got {
				if match.IsWin() {
					wins++
					if i >= w {
						t.Fatalf("m=%d w=%d: win at index %d after losses", m, w, i)
					}
				}
				if !match.Date.Equal(date) {
					t.Fatalf("synthetic match date = %v, want %v", match.Date, date)
				}
				if match.Hero != "" || match.PTSChange != nil || match.Duration != 0 {
					t.Fatalf("synthetic match carries detail: %+v", match)
				}
			}
			if wins != w {
				t.Fatalf("m=%d w=%d: wins = %d", m, w, wins)
			}
		}
	}
}

func TestNormalizeDetailedAndEmpty(t *testing.T) {
	date := mustDate(t, "2025-06-01T18:00:00Z")
	matches := []model.Match{
		match(model.ResultWin, "Pudge", model.Evening, date),
		match(model.ResultLoss, "", "", date),
	}
	got := NormalizeRecord(model.DetailedRecord{Matches: matches}, date)
	if diff := cmp.Diff(matches, got); diff != "" {
		t.Fatalf("detailed matches changed (-want +got):\n%s", diff)
	}

	got[0].Hero = "Invoker"
	if matches[0].Hero != "Pudge" {
		t.Fatal("normalizer output aliases the input slice")
	}

	if n := len(NormalizeRecord(nil, date)); n != 0 {
		t.Fatalf("nil record produced %d matches", n)
	}
}

func TestCanonicalMatchesOrder(t *testing.T) {
	d1 := mustDate(t, "2025-06-01T18:00:00Z")
	d2 := mustDate(t, "2025-06-02T18:00:00Z")
	d3 := mustDate(t, "2025-06-03T18:00:00Z")

	state := model.TrackerState{
		Days: []model.GameDay{
			simpleDay(d1, 1000, 1020, 3, 2),
			{Date: d2, Complete: true, Record: model.DetailedRecord{Matches: []model.Match{
				match(model.ResultLoss, "Axe", model.Night, d2),
			}}},
		},
		Current: &model.CurrentDay{Date: d3, Record: model.DetailedRecord{Matches: []model.Match{
			match(model.ResultWin, "Lina", model.Morning, d3),
		}}},
	}

	got := CanonicalMatches(state)
	want := []model.Result{model.ResultWin, model.ResultWin, model.ResultLoss, model.ResultLoss, model.ResultWin}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Result != want[i] {
			t.Errorf("match %d result = %s, want %s", i, got[i].Result, want[i])
		}
	}
	if got[3].Hero != "Axe" || got[4].Hero != "Lina" {
		t.Errorf("detailed matches out of order: %q, %q", got[3].Hero, got[4].Hero)
	}
}

func TestWindowedWinrate(t *testing.T) {
	now := mustDate(t, "2025-06-10T15:00:00Z")
	matches := []model.Match{
		match(model.ResultWin, "", "", mustDate(t, "2025-06-10T01:00:00Z")),  // today
		match(model.ResultLoss, "", "", mustDate(t, "2025-06-10T14:59:00Z")), // today
		match(model.ResultWin, "", "", mustDate(t, "2025-06-03T15:00:00Z")),  // exactly 7 days ago
		match(model.ResultWin, "", "", mustDate(t, "2025-06-03T14:59:59Z")),  // just outside the week
		match(model.ResultLoss, "", "", mustDate(t, "2025-05-11T15:00:00Z")), // exactly 30 days ago
		match(model.ResultLoss, "", "", mustDate(t, "2025-01-01T00:00:00Z")),
	}

	tests := []struct {
		name string
		w    Window
		want model.WinrateStats
	}{
		{"today", Today(now), model.WinrateStats{Count: 2, Wins: 1, Percent: 50}},
		{"week", Week(now), model.WinrateStats{Count: 3, Wins: 2, Percent: 67}},
		{"month", Month(now), model.WinrateStats{Count: 5, Wins: 3, Percent: 60}},
		{"all", AllTime(), model.WinrateStats{Count: 6, Wins: 3, Percent: 50}},
	}
	for _, tt := range tests {
		got := WindowedWinrate(matches, tt.w)
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestWindowedWinrateEmpty(t *testing.T) {
	got := WindowedWinrate(nil, AllTime())
	if got != (model.WinrateStats{}) {
		t.Fatalf("empty window = %+v, want zero", got)
	}

	now := mustDate(t, "2025-06-10T15:00:00Z")
	old := []model.Match{match(model.ResultWin, "", "", mustDate(t, "2024-01-01T00:00:00Z"))}
	if got := WindowedWinrate(old, Today(now)); got.Percent != 0 || got.Count != 0 {
		t.Fatalf("filtered-out window = %+v, want zero", got)
	}
}

func TestTodayUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, loc) // 2025-06-09 22:00 UTC
	m := match(model.ResultWin, "", "", time.Date(2025, 6, 9, 21, 30, 0, 0, time.UTC))

	if !Today(now)(m.Date) {
		t.Fatal("match on now's local date rejected")
	}
}

func TestTopHeroesTieBreak(t *testing.T) {
	var matches []model.Match
	add := func(hero string, n int) {
		for i := 0; i < n; i++ {
			matches = append(matches, model.Match{Result: model.ResultWin, Hero: hero})
		}
	}
	// first occurrence order A, C, B
	add("A", 1)
	add("C", 1)
	add("B", 5)
	add("A", 4)

	heroes := AggregateHeroes(matches)
	if got := []string{heroes[0].Hero, heroes[1].Hero, heroes[2].Hero}; !cmp.Equal(got, []string{"A", "C", "B"}) {
		t.Fatalf("encounter order = %v", got)
	}

	top := TopHeroes(heroes, 2)
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].Hero != "A" || top[0].Total != 5 {
		t.Errorf("top[0] = %+v, want A with 5", top[0])
	}
	if top[1].Hero != "B" || top[1].Total != 5 {
		t.Errorf("top[1] = %+v, want B with 5", top[1])
	}
	if heroes[1].Hero != "C" {
		t.Error("TopHeroes reordered its input")
	}
}

func TestAggregateHeroesUnspecified(t *testing.T) {
	matches := []model.Match{
		{Result: model.ResultWin},
		{Result: model.ResultLoss, Hero: "Pudge"},
		{Result: model.ResultLoss},
	}
	want := []model.HeroStats{
		{Hero: model.UnspecifiedHero, Wins: 1, Losses: 1, Total: 2, Percent: 50},
		{Hero: "Pudge", Wins: 0, Losses: 1, Total: 1, Percent: 0},
	}
	if diff := cmp.Diff(want, AggregateHeroes(matches)); diff != "" {
		t.Fatalf("AggregateHeroes (-want +got):\n%s", diff)
	}
}

func TestAggregateTimeOfDay(t *testing.T) {
	empty := AggregateTimeOfDay(nil)
	if len(empty) != 4 {
		t.Fatalf("empty buckets = %d, want 4", len(empty))
	}
	for _, b := range empty {
		if b.Total != 0 || b.Percent != 0 {
			t.Errorf("empty bucket %s = %+v", b.Slot, b)
		}
	}

	matches := []model.Match{
		{Result: model.ResultWin}, // defaults to morning
		{Result: model.ResultLoss, TimeOfDay: model.Morning},
		{Result: model.ResultWin, TimeOfDay: model.Evening},
		{Result: model.ResultWin, TimeOfDay: model.Night},
		{Result: model.ResultLoss, TimeOfDay: model.Night},
		{Result: model.ResultLoss, TimeOfDay: model.Night},
		{Result: model.ResultLoss, TimeOfDay: model.Afternoon},
	}
	got := AggregateTimeOfDay(matches)
	want := []model.TimeOfDayStats{
		{Slot: model.Morning, Wins: 1, Losses: 1, Total: 2, Percent: 50},
		{Slot: model.Afternoon, Wins: 0, Losses: 1, Total: 1, Percent: 0},
		{Slot: model.Evening, Wins: 1, Losses: 0, Total: 1, Percent: 100},
		{Slot: model.Night, Wins: 1, Losses: 2, Total: 3, Percent: 33},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("AggregateTimeOfDay (-want +got):\n%s", diff)
	}

	sum := 0
	for _, b := range got {
		sum += b.Total
	}
	if sum != len(matches) {
		t.Errorf("bucket totals = %d, want %d", sum, len(matches))
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		current, target, want int
	}{
		{0, 10000, 0},
		{5000, 10000, 50},
		{10000, 10000, 100},
		{12000, 10000, 100},
		{-500, 10000, 0},
		{500, 0, 0},
		{500, -10, 0},
	}
	for _, tt := range tests {
		if got := ProgressPercent(tt.current, tt.target); got != tt.want {
			t.Errorf("ProgressPercent(%d, %d) = %d, want %d", tt.current, tt.target, got, tt.want)
		}
	}

	prev := -1
	for cur := -100; cur <= 1200; cur += 7 {
		got := ProgressPercent(cur, 1000)
		if got < prev {
			t.Fatalf("progress decreased at %d: %d < %d", cur, got, prev)
		}
		if got < 0 || got > 100 {
			t.Fatalf("progress out of range at %d: %d", cur, got)
		}
		prev = got
	}
}

func TestAggregateDays(t *testing.T) {
	d1 := mustDate(t, "2025-06-01T18:00:00Z")
	d2 := mustDate(t, "2025-06-02T18:00:00Z")
	d3 := mustDate(t, "2025-06-03T18:00:00Z")

	state := model.TrackerState{
		Days: []model.GameDay{
			simpleDay(d1, 1000, 1040, 4, 3),
			{ID: "b", Date: d2, StartPTS: 1040, Complete: true, Record: model.DetailedRecord{Matches: []model.Match{
				{Result: model.ResultWin, PTSChange: intp(25), Date: d2},
				{Result: model.ResultLoss, PTSChange: intp(-18), Date: d2},
			}}},
		},
		Current: &model.CurrentDay{ID: "c", Date: d3, StartPTS: 1047},
	}

	days := AggregateDays(state)
	if len(days) != 3 {
		t.Fatalf("len = %d, want 3", len(days))
	}
	if !days[0].Open || days[0].ID != "c" || days[0].Matches != 0 {
		t.Errorf("open day row = %+v", days[0])
	}
	if days[1].ID != "b" || !days[1].HasChange || days[1].PTSChange != 7 || !days[1].Detailed {
		t.Errorf("detailed day row = %+v, want change 7 from match deltas", days[1])
	}
	if days[2].PTSChange != 40 || days[2].Winrate != 75 || days[2].Losses != 1 {
		t.Errorf("simple day row = %+v", days[2])
	}
}

func TestPTSHistory(t *testing.T) {
	d1 := mustDate(t, "2025-06-01T18:00:00Z")
	d2 := mustDate(t, "2025-06-02T18:00:00Z")
	state := model.TrackerState{Days: []model.GameDay{
		simpleDay(d1, 1000, 1040, 4, 3),
		{Date: d2, StartPTS: 1040, Record: model.SimpleRecord{MatchesCount: 1}},
		simpleDay(d2, 1040, 1020, 1, 0),
	}}

	want := []model.PTSPoint{{Date: d1, PTS: 1040}, {Date: d2, PTS: 1020}}
	if diff := cmp.Diff(want, PTSHistory(state)); diff != "" {
		t.Fatalf("PTSHistory (-want +got):\n%s", diff)
	}
}

func TestFilterByHero(t *testing.T) {
	matches := []model.Match{{Hero: "Shadow Fiend"}, {Hero: "Pudge"}, {}}
	if got := FilterByHero(matches, "shadow"); len(got) != 1 {
		t.Errorf("FilterByHero(shadow) = %d matches, want 1", len(got))
	}
	if got := FilterByHero(matches, "unspec"); len(got) != 1 {
		t.Errorf("FilterByHero(unspec) = %d matches, want 1", len(got))
	}
	if got := FilterByHero(matches, ""); len(got) != 3 {
		t.Errorf("FilterByHero(\"\") = %d matches, want 3", len(got))
	}
}

func TestFilterBySlot(t *testing.T) {
	matches := []model.Match{{TimeOfDay: model.Night}, {TimeOfDay: model.Evening}, {}}
	if got := FilterBySlot(matches, model.Night); len(got) != 1 {
		t.Errorf("FilterBySlot(night) = %d matches, want 1", len(got))
	}
	// a missing slot counts as morning
	if got := FilterBySlot(matches, model.Morning); len(got) != 1 {
		t.Errorf("FilterBySlot(morning) = %d matches, want 1", len(got))
	}
}

func TestAchievements(t *testing.T) {
	got := Achievements(2500)
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}
	if n := UnlockedCount(got); n != 3 {
		t.Errorf("unlocked = %d, want 3", n)
	}
	if !got[2].Unlocked || got[2].Threshold != 2000 {
		t.Errorf("2000 milestone = %+v", got[2])
	}
	if got[3].Unlocked {
		t.Errorf("3000 milestone unlocked at 2500")
	}
	if n := UnlockedCount(Achievements(5000)); n != 6 {
		t.Errorf("unlocked at 5000 = %d, want 6", n)
	}
}
