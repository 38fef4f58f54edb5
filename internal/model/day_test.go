package model

import (
	"testing"
	"time"
)

func intp(v int) *int { return &v }

func TestGameDayPTSChange(t *testing.T) {
	d := GameDay{StartPTS: 1000, EndPTS: intp(1060), Record: SimpleRecord{MatchesCount: 4, Wins: 3}}
	if got, ok := d.PTSChange(); !ok || got != 60 {
		t.Errorf("PTSChange = %d, %v; want 60, true", got, ok)
	}

	detailed := GameDay{StartPTS: 1000, Record: DetailedRecord{Matches: []Match{
		{Result: ResultWin, PTSChange: intp(22)},
		{Result: ResultLoss, PTSChange: intp(-19)},
		{Result: ResultWin},
	}}}
	if got, ok := detailed.PTSChange(); !ok || got != 3 {
		t.Errorf("detailed PTSChange = %d, %v; want 3, true", got, ok)
	}

	simple := GameDay{StartPTS: 1000, Record: SimpleRecord{MatchesCount: 2, Wins: 1}}
	if _, ok := simple.PTSChange(); ok {
		t.Error("simple day without end score reported a change")
	}
}

func TestWinrate(t *testing.T) {
	tests := []struct {
		rec  DayRecord
		want int
	}{
		{nil, 0},
		{SimpleRecord{MatchesCount: 0}, 0},
		{SimpleRecord{MatchesCount: 3, Wins: 2}, 67},
		{SimpleRecord{MatchesCount: 8, Wins: 1}, 13},
		{DetailedRecord{Matches: []Match{{Result: ResultWin}, {Result: ResultLoss}}}, 50},
	}
	for _, tt := range tests {
		d := GameDay{Record: tt.rec}
		if got := d.Winrate(); got != tt.want {
			t.Errorf("Winrate(%+v) = %d, want %d", tt.rec, got, tt.want)
		}
	}
}

func TestLossesNeverNegative(t *testing.T) {
	r := SimpleRecord{MatchesCount: 2, Wins: 5}
	if r.Losses() != 0 {
		t.Errorf("Losses = %d, want 0", r.Losses())
	}
	if got := (GameDay{Record: r}).Losses(); got != 0 {
		t.Errorf("GameDay.Losses = %d, want 0", got)
	}
}

func TestCurrentDayShape(t *testing.T) {
	var c CurrentDay
	if c.IsSimple() || c.IsDetailed() {
		t.Fatal("empty day reported a shape")
	}
	c.Record = SimpleRecord{MatchesCount: 1, Wins: 1}
	if !c.IsSimple() || c.IsDetailed() {
		t.Fatal("simple day misreported")
	}
	c.Record = DetailedRecord{Matches: []Match{{Result: ResultWin}}}
	if c.IsSimple() || !c.IsDetailed() {
		t.Fatal("detailed day misreported")
	}
}

func TestMatchDefaults(t *testing.T) {
	var m Match
	if m.HeroName() != UnspecifiedHero {
		t.Errorf("HeroName = %q, want %q", m.HeroName(), UnspecifiedHero)
	}
	if m.Slot() != Morning {
		t.Errorf("Slot = %q, want morning", m.Slot())
	}
}

func TestParseResult(t *testing.T) {
	for in, want := range map[string]Result{"win": ResultWin, "W": ResultWin, " loss ": ResultLoss, "l": ResultLoss} {
		got, ok := ParseResult(in)
		if !ok || got != want {
			t.Errorf("ParseResult(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseResult("draw"); ok {
		t.Error("ParseResult accepted draw")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	if got, ok := ParseTimeOfDay(""); !ok || got != Morning {
		t.Errorf("empty slot = %q, %v", got, ok)
	}
	if got, ok := ParseTimeOfDay("Night"); !ok || got != Night {
		t.Errorf("Night = %q, %v", got, ok)
	}
	if _, ok := ParseTimeOfDay("noon"); ok {
		t.Error("accepted noon")
	}
}

func TestSlotForHour(t *testing.T) {
	want := map[int]TimeOfDay{0: Night, 5: Night, 6: Morning, 11: Morning, 12: Afternoon, 17: Afternoon, 18: Evening, 23: Evening}
	for h, slot := range want {
		if got := SlotForHour(h); got != slot {
			t.Errorf("SlotForHour(%d) = %s, want %s", h, got, slot)
		}
	}
}

func TestCloneIsolatesCurrentMatches(t *testing.T) {
	s := TrackerState{
		Days: []GameDay{{ID: "a"}},
		Current: &CurrentDay{Date: time.Now(), Record: DetailedRecord{Matches: []Match{
			{Result: ResultWin, Hero: "Axe"},
		}}},
	}
	c := s.Clone()
	c.Days[0].ID = "b"
	c.Current.StartPTS = 99
	c.Current.Record.(DetailedRecord).Matches[0].Hero = "Lina"

	if s.Days[0].ID != "a" {
		t.Error("Clone shares Days")
	}
	if s.Current.StartPTS != 0 {
		t.Error("Clone shares Current")
	}
	if s.Current.Record.(DetailedRecord).Matches[0].Hero != "Axe" {
		t.Error("Clone shares match slice")
	}
}

func TestOutcomeString(t *testing.T) {
	tests := map[string]Outcome{
		"13 days":                                {Kind: OutcomeEstimate, Days: 13},
		"1 day":                                  {Kind: OutcomeEstimate, Days: 1},
		"target reached":                         {Kind: OutcomeAlreadyAchieved},
		"insufficient data: no matches recorded": {Kind: OutcomeInsufficientData, Reason: ReasonNoMatches},
	}
	for want, o := range tests {
		if got := o.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
