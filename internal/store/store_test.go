package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/tracker"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadEmpty(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	state, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.TargetPTS != model.DefaultTargetPTS || state.CurrentPTS != 0 || state.Current != nil {
		t.Errorf("empty state = %+v", state)
	}
	if rev, _ := s.Revision(ctx); rev != 0 {
		t.Errorf("revision = %d, want 0", rev)
	}
}

func TestSaveLoad(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	state, err := tracker.StartDay(model.NewState(), 2500, now)
	if err != nil {
		t.Fatal(err)
	}
	state, err = tracker.AddMatch(state, tracker.MatchInput{Result: model.ResultWin, PTSChange: 24, Hero: "Lion"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentPTS != 2524 || got.Current == nil || got.Current.Matches() != 1 {
		t.Fatalf("loaded = %+v", got)
	}
	if rev, _ := s.Revision(ctx); rev != 1 {
		t.Errorf("revision = %d, want 1", rev)
	}
}

func TestUpdate(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	got, err := s.Update(ctx, func(st model.TrackerState) (model.TrackerState, error) {
		return tracker.SetTarget(st, 7000)
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.TargetPTS != 7000 {
		t.Errorf("TargetPTS = %d", got.TargetPTS)
	}

	_, err = s.Update(ctx, func(st model.TrackerState) (model.TrackerState, error) {
		return tracker.SetTarget(st, -1)
	})
	if !errors.Is(err, tracker.ErrInvalidTarget) {
		t.Fatalf("err = %v, want ErrInvalidTarget", err)
	}
	if rev, _ := s.Revision(ctx); rev != 1 {
		t.Errorf("failed update bumped revision to %d", rev)
	}
}

func TestUpdateConflict(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.Update(ctx, func(st model.TrackerState) (model.TrackerState, error) {
		// a second writer sneaks in before this update is saved
		if err := s.Save(ctx, tracker.SetCurrentPTS(st, 100)); err != nil {
			t.Fatal(err)
		}
		return tracker.SetCurrentPTS(st, 200), nil
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	state, _ := s.Load(ctx)
	if state.CurrentPTS != 100 {
		t.Errorf("CurrentPTS = %d, want 100 from the first writer", state.CurrentPTS)
	}
}

func TestUndo(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if _, err := s.Undo(ctx); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("empty undo err = %v", err)
	}

	for _, pts := range []int{100, 200, 300} {
		if err := s.Save(ctx, tracker.SetCurrentPTS(model.NewState(), pts)); err != nil {
			t.Fatal(err)
		}
	}

	state, err := s.Undo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.CurrentPTS != 200 {
		t.Errorf("first undo = %d, want 200", state.CurrentPTS)
	}
	state, err = s.Undo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.CurrentPTS != 100 {
		t.Errorf("second undo = %d, want 100", state.CurrentPTS)
	}
	if _, err := s.Undo(ctx); !errors.Is(err, ErrNoHistory) {
		t.Errorf("third undo err = %v, want ErrNoHistory", err)
	}

	loaded, _ := s.Load(ctx)
	if loaded.CurrentPTS != 100 {
		t.Errorf("stored CurrentPTS = %d, want 100", loaded.CurrentPTS)
	}
}

func TestExportImport(t *testing.T) {
	src := openTemp(t)
	dst := openTemp(t)
	ctx := context.Background()

	if err := src.Save(ctx, tracker.SetCurrentPTS(model.NewState(), 4321)); err != nil {
		t.Fatal(err)
	}
	data, err := src.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}

	res, err := dst.Import(ctx, data)
	if err != nil {
		t.Fatal(err)
	}
	if res.State.CurrentPTS != 4321 {
		t.Errorf("imported CurrentPTS = %d", res.State.CurrentPTS)
	}
	got, _ := dst.Load(ctx)
	if got.CurrentPTS != 4321 || got.TargetPTS != model.DefaultTargetPTS {
		t.Errorf("stored after import = %+v", got)
	}

	if _, err := dst.Import(ctx, []byte("{not json")); err == nil {
		t.Error("expected error importing malformed document")
	}
}
