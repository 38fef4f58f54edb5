package snapshot

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/theirongolddev/ptstrack/internal/model"
)

// legacyDoc mirrors a document written by the browser tracker: ids are
// missing, a simple day still carries an empty matches list, and the
// current day holds detailed matches.
const legacyDoc = `{
  "currentPTS": 4120,
  "targetPTS": 6000,
  "gameDays": [
    {
      "date": "2025-06-01T18:00:00.000Z",
      "startDate": "2025-06-01T18:00:00.000Z",
      "startTimePTS": 4000,
      "matches": [],
      "isComplete": true,
      "endTimePTS": 4060,
      "matchesCount": 5,
      "wins": 4,
      "losses": 1,
      "winrate": 80,
      "ptsChange": 60
    },
    {
      "date": "2025-06-02T18:00:00.000Z",
      "startTimePTS": 4060,
      "isComplete": true,
      "endTimePTS": "4100",
      "matches": [
        {"hero": "Pudge", "result": "win", "ptsChange": 25, "timeOfDay": "evening", "duration": 38, "date": "2025-06-02T18:40:00.000Z"},
        {"hero": "", "result": "draw", "ptsChange": 0, "timeOfDay": "evening", "duration": 0, "date": "2025-06-02T19:20:00.000Z"},
        {"result": "loss", "ptsChange": -18, "timeOfDay": null, "date": "2025-06-02T20:00:00.000Z"}
      ]
    }
  ],
  "currentDay": {
    "date": "2025-06-03T10:00:00.000Z",
    "startDate": "2025-06-03T10:00:00.000Z",
    "startTimePTS": 4100,
    "matches": [
      {"hero": "Lion", "result": "win", "ptsChange": 20, "timeOfDay": "morning", "duration": 30, "date": "2025-06-03T10:30:00.000Z"}
    ],
    "isComplete": false
  }
}`

func TestDecodeLegacyDocument(t *testing.T) {
	res, err := Decode([]byte(legacyDoc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	s := res.State

	if s.CurrentPTS != 4120 || s.TargetPTS != 6000 {
		t.Errorf("PTS = %d/%d, want 4120/6000", s.CurrentPTS, s.TargetPTS)
	}
	if len(s.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(s.Days))
	}
	if res.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", res.Rejected)
	}
	if res.Generated != 3 {
		t.Errorf("Generated = %d, want 3", res.Generated)
	}

	simple, ok := s.Days[0].Record.(model.SimpleRecord)
	if !ok || simple != (model.SimpleRecord{MatchesCount: 5, Wins: 4}) {
		t.Errorf("day 0 record = %#v", s.Days[0].Record)
	}

	detailed, ok := s.Days[1].Record.(model.DetailedRecord)
	if !ok || len(detailed.Matches) != 2 {
		t.Fatalf("day 1 record = %#v", s.Days[1].Record)
	}
	if got, ok := s.Days[1].PTSChange(); !ok || got != 40 {
		t.Errorf("day 1 change = %d, %v; want 40 from string end score", got, ok)
	}
	if detailed.Matches[1].Slot() != model.Morning {
		t.Errorf("null timeOfDay decoded as %q", detailed.Matches[1].TimeOfDay)
	}

	want := time.Date(2025, 6, 2, 18, 40, 0, 0, time.UTC)
	if !detailed.Matches[0].Date.Equal(want) {
		t.Errorf("match date = %v, want %v", detailed.Matches[0].Date, want)
	}

	if s.Current == nil || !s.Current.IsDetailed() || s.Current.Matches() != 1 {
		t.Fatalf("current = %+v", s.Current)
	}
}

func TestDecodeClampsCounts(t *testing.T) {
	doc := `{"currentPTS":0,"targetPTS":100,"gameDays":[
		{"id":"a","date":"2025-06-01","startTimePTS":0,"isComplete":true,"matchesCount":-3,"wins":2},
		{"id":"b","date":"2025-06-02","startTimePTS":0,"isComplete":true,"matchesCount":4,"wins":9},
		{"id":"c","date":"2025-06-03","startTimePTS":0,"isComplete":true,"matchesCount":4,"wins":-1}
	]}`
	res, err := Decode([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	want := []model.SimpleRecord{
		{MatchesCount: 0, Wins: 0},
		{MatchesCount: 4, Wins: 4},
		{MatchesCount: 4, Wins: 0},
	}
	for i, w := range want {
		if got := res.State.Days[i].Record; got != w {
			t.Errorf("day %d = %#v, want %#v", i, got, w)
		}
	}
	if res.Clamped != 3 {
		t.Errorf("Clamped = %d, want 3", res.Clamped)
	}
}

func TestDecodeEmptyAndDefaults(t *testing.T) {
	res, err := Decode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.State.TargetPTS != model.DefaultTargetPTS || res.State.CurrentPTS != 0 {
		t.Errorf("empty state = %+v", res.State)
	}

	res, err = Decode([]byte(`{"currentPTS": 300}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.State.TargetPTS != model.DefaultTargetPTS {
		t.Errorf("TargetPTS = %d, want default", res.State.TargetPTS)
	}

	if _, err := Decode([]byte(`{"currentPTS": `)); err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestDecodeBadDate(t *testing.T) {
	res, err := Decode([]byte(`{"gameDays":[{"id":"x","date":"yesterday","startTimePTS":1,"matchesCount":1,"wins":1}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.BadDates != 1 || !res.State.Days[0].Date.IsZero() {
		t.Errorf("BadDates = %d, date = %v", res.BadDates, res.State.Days[0].Date)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	date := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	end := 1040
	delta := 25
	state := model.TrackerState{
		CurrentPTS: 1065,
		TargetPTS:  2000,
		Days: []model.GameDay{
			{ID: "a", Date: date, StartPTS: 1000, EndPTS: &end, Complete: true, Record: model.SimpleRecord{MatchesCount: 4, Wins: 3}},
		},
		Current: &model.CurrentDay{ID: "b", Date: date.AddDate(0, 0, 1), StartPTS: 1040, Record: model.DetailedRecord{Matches: []model.Match{
			{Result: model.ResultWin, PTSChange: &delta, Hero: "Axe", TimeOfDay: model.Night, Duration: 44, Date: date.AddDate(0, 0, 1)},
		}}},
	}

	data, err := Encode(state)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, field := range []string{`"winrate": 75`, `"ptsChange": 40`, `"startDate"`, `"2025-06-01T18:00:00.000Z"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded document missing %s", field)
		}
	}

	res, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(state, res.State); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
	if res.Generated != 0 || res.Rejected != 0 {
		t.Errorf("round trip repaired input: %+v", res)
	}
}
