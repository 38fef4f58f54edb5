package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/theirongolddev/ptstrack/internal/model"
)

func fixedIDs(t *testing.T) {
	t.Helper()
	orig := NewID
	n := 0
	NewID = func() string {
		n++
		return "day-" + string(rune('0'+n))
	}
	t.Cleanup(func() { NewID = orig })
}

func mustStart(t *testing.T, s model.TrackerState, pts int, now time.Time) model.TrackerState {
	t.Helper()
	out, err := StartDay(s, pts, now)
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}
	return out
}

func TestStartDay(t *testing.T) {
	fixedIDs(t)
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	s := model.NewState()

	got := mustStart(t, s, 4200, now)
	if got.Current == nil || got.Current.ID != "day-1" || got.Current.StartPTS != 4200 {
		t.Fatalf("Current = %+v", got.Current)
	}
	if got.CurrentPTS != 4200 {
		t.Errorf("CurrentPTS = %d, want 4200", got.CurrentPTS)
	}
	if s.Current != nil {
		t.Fatal("StartDay modified its input")
	}

	if _, err := StartDay(got, 4300, now); !errors.Is(err, ErrDayInProgress) {
		t.Fatalf("second StartDay err = %v, want ErrDayInProgress", err)
	}
}

func TestAddMatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	s := mustStart(t, model.NewState(), 1000, now)

	s1, err := AddMatch(s, MatchInput{Result: model.ResultWin, PTSChange: 25, TimeOfDay: model.Evening, Duration: 41}, now)
	if err != nil {
		t.Fatalf("AddMatch: %v", err)
	}
	s2, err := AddMatch(s1, MatchInput{Result: model.ResultLoss, PTSChange: -20, Hero: "Axe"}, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("AddMatch: %v", err)
	}

	if s2.CurrentPTS != 1005 {
		t.Errorf("CurrentPTS = %d, want 1005", s2.CurrentPTS)
	}
	if s1.Current.Matches() != 1 {
		t.Errorf("earlier snapshot grew to %d matches", s1.Current.Matches())
	}

	dr := s2.Current.Record.(model.DetailedRecord)
	if dr.Matches[0].Hero != model.UnspecifiedHero {
		t.Errorf("default hero = %q", dr.Matches[0].Hero)
	}
	if dr.Matches[1].Slot() != model.Morning {
		t.Errorf("default slot = %q", dr.Matches[1].Slot())
	}
	if *dr.Matches[1].PTSChange != -20 {
		t.Errorf("PTSChange = %d", *dr.Matches[1].PTSChange)
	}
}

func TestAddMatchErrors(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	if _, err := AddMatch(model.NewState(), MatchInput{Result: model.ResultWin}, now); !errors.Is(err, ErrNoActiveDay) {
		t.Errorf("no day: err = %v", err)
	}

	s := mustStart(t, model.NewState(), 1000, now)
	if _, err := AddMatch(s, MatchInput{Result: "draw"}, now); !errors.Is(err, ErrInvalidResult) {
		t.Errorf("bad result: err = %v", err)
	}
	if _, err := AddMatch(s, MatchInput{Result: model.ResultWin, TimeOfDay: "noon"}, now); !errors.Is(err, ErrInvalidTimeOfDay) {
		t.Errorf("bad slot: err = %v", err)
	}
	if _, err := AddMatch(s, MatchInput{Result: model.ResultWin, Duration: -1}, now); !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("negative duration: err = %v", err)
	}

	simple, err := RecordTally(s, 3, 2)
	if err != nil {
		t.Fatalf("RecordTally: %v", err)
	}
	if _, err := AddMatch(simple, MatchInput{Result: model.ResultWin}, now); !errors.Is(err, ErrSimpleDay) {
		t.Errorf("simple day: err = %v", err)
	}
}

func TestRecordTallyErrors(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	s := mustStart(t, model.NewState(), 1000, now)

	for _, c := range [][2]int{{-1, 0}, {3, 4}, {3, -1}} {
		if _, err := RecordTally(s, c[0], c[1]); !errors.Is(err, ErrInvalidCounts) {
			t.Errorf("RecordTally(%d, %d) err = %v", c[0], c[1], err)
		}
	}

	detailed, err := AddMatch(s, MatchInput{Result: model.ResultWin}, now)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := RecordTally(detailed, 3, 2); !errors.Is(err, ErrDetailedDay) {
		t.Errorf("detailed day: err = %v", err)
	}
}

func TestEndDay(t *testing.T) {
	fixedIDs(t)
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	s := mustStart(t, model.NewState(), 1000, now)

	closed, err := EndDaySimple(s, 1040, 6, 4)
	if err != nil {
		t.Fatalf("EndDaySimple: %v", err)
	}
	if closed.Current != nil {
		t.Fatal("day still open")
	}
	if closed.CurrentPTS != 1040 {
		t.Errorf("CurrentPTS = %d, want 1040", closed.CurrentPTS)
	}

	end := 1040
	want := []model.GameDay{{
		ID:       "day-1",
		Date:     now,
		StartPTS: 1000,
		EndPTS:   &end,
		Complete: true,
		Record:   model.SimpleRecord{MatchesCount: 6, Wins: 4},
	}}
	if diff := cmp.Diff(want, closed.Days); diff != "" {
		t.Fatalf("Days (-want +got):\n%s", diff)
	}

	if _, err := EndDay(closed, 1000); !errors.Is(err, ErrNoActiveDay) {
		t.Errorf("EndDay without day: err = %v", err)
	}
}

func TestEndEmptyDay(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	s := mustStart(t, model.NewState(), 1000, now)

	closed, err := EndDay(s, 1000)
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := closed.Days[0].Record.(model.SimpleRecord)
	if !ok || rec != (model.SimpleRecord{}) {
		t.Fatalf("Record = %#v, want empty SimpleRecord", closed.Days[0].Record)
	}
}

func TestDiscardDay(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	s := mustStart(t, model.NewState(), 1000, now)
	s, err := AddMatch(s, MatchInput{Result: model.ResultWin, PTSChange: 30}, now)
	if err != nil {
		t.Fatal(err)
	}

	got, err := DiscardDay(s)
	if err != nil {
		t.Fatal(err)
	}
	if got.Current != nil || got.CurrentPTS != 1000 || len(got.Days) != 0 {
		t.Fatalf("after discard: %+v", got)
	}
}

func TestSetTarget(t *testing.T) {
	s, err := SetTarget(model.NewState(), 12000)
	if err != nil || s.TargetPTS != 12000 {
		t.Fatalf("SetTarget = %d, %v", s.TargetPTS, err)
	}
	if _, err := SetTarget(s, 0); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("zero target err = %v", err)
	}
	if got := SetCurrentPTS(s, 777); got.CurrentPTS != 777 || s.CurrentPTS != 0 {
		t.Errorf("SetCurrentPTS: got %d, original %d", got.CurrentPTS, s.CurrentPTS)
	}
}
