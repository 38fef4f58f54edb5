package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/ptstrack/internal/model"
)

type fakeSource struct {
	rev   int64
	state model.TrackerState
	err   error
	loads int
}

func (f *fakeSource) Revision(context.Context) (int64, error) {
	return f.rev, f.err
}

func (f *fakeSource) Load(context.Context) (model.TrackerState, error) {
	f.loads++
	return f.state.Clone(), f.err
}

var fixedNow = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, src StateSource) *Service {
	t.Helper()
	s := New(Config{DBPath: "state.db", Interval: 10 * time.Second, EventsBuffer: 10}, src, zerolog.Nop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func testState(currentPTS int) model.TrackerState {
	st := model.NewState()
	st.CurrentPTS = currentPTS
	st.Days = []model.GameDay{{
		ID:       "d1",
		Date:     fixedNow.AddDate(0, 0, -1),
		StartPTS: currentPTS - 40,
		Complete: true,
		Record:   model.SimpleRecord{MatchesCount: 8, Wins: 6},
	}}
	return st
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Revision: 3, CurrentPTS: 4500, TargetPTS: 10000, TotalMatches: 40, ClosedDays: 4}
	curr := Snapshot{Revision: 5, CurrentPTS: 4540, TargetPTS: 10000, TotalMatches: 42, ClosedDays: 5}

	want := Delta{Revisions: 2, PTS: 40, Matches: 2, ClosedDays: 1}
	got := diffSnapshots(prev, curr)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("diffSnapshots mismatch (-want +got):\n%s", diff)
	}
	if got.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should produce a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, &fakeSource{}, zerolog.Nop())

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOncePublishesOnlyOnChange(t *testing.T) {
	src := &fakeSource{rev: 1, state: testState(4520)}
	s := newTestService(t, src)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx)

	if src.loads != 1 {
		t.Errorf("loads = %d, want 1 for an unchanged revision", src.loads)
	}
	if len(s.events) != 1 || s.events[0].Type != "snapshot" {
		t.Fatalf("events = %+v, want one snapshot", s.events)
	}

	src.rev = 2
	src.state.CurrentPTS = 4540
	s.pollOnce(ctx)

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	ev := s.events[1]
	if ev.Type != "state_delta" {
		t.Errorf("type = %q, want state_delta", ev.Type)
	}
	if ev.Delta.PTS != 20 || ev.Delta.Revisions != 1 {
		t.Errorf("delta = %+v", ev.Delta)
	}

	st := s.snapshotStatus()
	if st.PollCount != 3 || st.LastError != "" {
		t.Errorf("status = %+v", st)
	}
	if st.Summary.AllTimeWinrate != 75 {
		t.Errorf("AllTimeWinrate = %d, want 75", st.Summary.AllTimeWinrate)
	}
}

func TestPollOnceRecordsError(t *testing.T) {
	src := &fakeSource{err: errors.New("database is locked")}
	s := newTestService(t, src)

	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if !strings.Contains(st.LastError, "database is locked") {
		t.Errorf("LastError = %q", st.LastError)
	}
	if st.PollCount != 1 || st.EventCount != 0 {
		t.Errorf("status = %+v", st)
	}
}

func TestSnapshotForecastDays(t *testing.T) {
	st := testState(9980)
	st.Days[0].Record = model.SimpleRecord{MatchesCount: 8, Wins: 8}
	snap := snapshotFromState(st, 1, newTestService(t, &fakeSource{}).forecaster, fixedNow)
	if snap.ForecastDays != 1 {
		t.Errorf("ForecastDays = %d, want 1 (%s)", snap.ForecastDays, snap.Forecast)
	}

	st.CurrentPTS = 10000
	snap = snapshotFromState(st, 1, newTestService(t, &fakeSource{}).forecaster, fixedNow)
	if snap.ForecastDays != 0 {
		t.Errorf("achieved ForecastDays = %d, want 0", snap.ForecastDays)
	}

	snap = snapshotFromState(model.NewState(), 0, newTestService(t, &fakeSource{}).forecaster, fixedNow)
	if snap.ForecastDays != -1 {
		t.Errorf("empty ForecastDays = %d, want -1", snap.ForecastDays)
	}
}

func TestHandlers(t *testing.T) {
	s := newTestService(t, &fakeSource{rev: 4, state: testState(4520)})
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	body := get(t, srv.URL+"/healthz")
	if body != "ok\n" {
		t.Errorf("healthz = %q", body)
	}

	var st Status
	if err := json.Unmarshal([]byte(get(t, srv.URL+"/v1/status")), &st); err != nil {
		t.Fatal(err)
	}
	if st.Summary.CurrentPTS != 4520 || st.Summary.Revision != 4 || st.DBPath != "state.db" {
		t.Errorf("status summary = %+v", st)
	}

	var events []Event
	if err := json.Unmarshal([]byte(get(t, srv.URL+"/v1/events")), &events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}

	metrics := get(t, srv.URL+"/metrics")
	for _, want := range []string{
		"ptstrack_current_pts 4520",
		"ptstrack_target_pts 10000",
		`ptstrack_winrate_percent{window="all_time"} 75`,
		"ptstrack_daemon_polls_total 1",
	} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestCORSOnlyWhenConfigured(t *testing.T) {
	preflight := func(s *Service) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/v1/status", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec
	}

	closed := newTestService(t, &fakeSource{})
	if got := preflight(closed).Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("CORS header without configured origins: %q", got)
	}

	open := New(Config{Interval: time.Second, EventsBuffer: 1, AllowedOrigins: []string{"http://localhost:3000"}}, &fakeSource{}, zerolog.Nop())
	if got := preflight(open).Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want the configured origin", got)
	}
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
