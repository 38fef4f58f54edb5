// Package tracker applies user actions to a TrackerState. Every transition
// returns a new state and leaves its input untouched.
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/ptstrack/internal/model"
)

var (
	ErrDayInProgress    = errors.New("a game day is already in progress")
	ErrNoActiveDay      = errors.New("no game day in progress")
	ErrSimpleDay        = errors.New("day already holds summary counts")
	ErrDetailedDay      = errors.New("day already holds individual matches")
	ErrInvalidResult    = errors.New("result must be win or loss")
	ErrInvalidTimeOfDay = errors.New("time of day must be morning, afternoon, evening or night")
	ErrInvalidCounts    = errors.New("wins must be between 0 and the match count")
	ErrInvalidTarget    = errors.New("target must be positive")
	ErrNegativeDuration = errors.New("duration cannot be negative")
)

// NewID returns a fresh day identifier.
var NewID = func() string { return uuid.NewString() }

// MatchInput describes a match entered by the user.
type MatchInput struct {
	Result    model.Result
	PTSChange int
	Hero      string
	TimeOfDay model.TimeOfDay
	Duration  int
}

// Validate checks the input and fills defaults.
func (in MatchInput) Validate() (MatchInput, error) {
	if !in.Result.Valid() {
		return in, fmt.Errorf("%w: %q", ErrInvalidResult, in.Result)
	}
	slot, ok := model.ParseTimeOfDay(string(in.TimeOfDay))
	if !ok {
		return in, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, in.TimeOfDay)
	}
	in.TimeOfDay = slot
	if in.Duration < 0 {
		return in, ErrNegativeDuration
	}
	if in.Hero == "" {
		in.Hero = model.UnspecifiedHero
	}
	return in, nil
}

// StartDay opens a new game day at startPTS.
func StartDay(s model.TrackerState, startPTS int, now time.Time) (model.TrackerState, error) {
	if s.Current != nil {
		return s, ErrDayInProgress
	}
	out := s.Clone()
	out.Current = &model.CurrentDay{
		ID:       NewID(),
		Date:     now,
		StartPTS: startPTS,
	}
	out.CurrentPTS = startPTS
	return out, nil
}

// AddMatch appends a detailed match to the open day and applies its PTS
// change to the current score.
func AddMatch(s model.TrackerState, in MatchInput, now time.Time) (model.TrackerState, error) {
	if s.Current == nil {
		return s, ErrNoActiveDay
	}
	if s.Current.IsSimple() {
		return s, ErrSimpleDay
	}
	in, err := in.Validate()
	if err != nil {
		return s, err
	}

	out := s.Clone()
	var matches []model.Match
	if dr, ok := out.Current.Record.(model.DetailedRecord); ok {
		matches = dr.Matches
	}
	delta := in.PTSChange
	matches = append(matches, model.Match{
		Result:    in.Result,
		PTSChange: &delta,
		Hero:      in.Hero,
		TimeOfDay: in.TimeOfDay,
		Duration:  in.Duration,
		Date:      now,
	})
	out.Current.Record = model.DetailedRecord{Matches: matches}
	out.CurrentPTS += delta
	return out, nil
}

// RecordTally stores summary counts on the open day, replacing earlier counts.
func RecordTally(s model.TrackerState, matches, wins int) (model.TrackerState, error) {
	if s.Current == nil {
		return s, ErrNoActiveDay
	}
	if s.Current.IsDetailed() {
		return s, ErrDetailedDay
	}
	if matches < 0 || wins < 0 || wins > matches {
		return s, fmt.Errorf("%w: %d wins of %d", ErrInvalidCounts, wins, matches)
	}
	out := s.Clone()
	out.Current.Record = model.SimpleRecord{MatchesCount: matches, Wins: wins}
	return out, nil
}

// EndDay closes the open day at endPTS. A day closed with nothing
// recorded is stored as zero summary counts.
func EndDay(s model.TrackerState, endPTS int) (model.TrackerState, error) {
	if s.Current == nil {
		return s, ErrNoActiveDay
	}
	out := s.Clone()
	cur := out.Current
	rec := cur.Record
	if rec == nil {
		rec = model.SimpleRecord{}
	}
	end := endPTS
	out.Days = append(out.Days, model.GameDay{
		ID:       cur.ID,
		Date:     cur.Date,
		StartPTS: cur.StartPTS,
		EndPTS:   &end,
		Complete: true,
		Record:   rec,
	})
	out.Current = nil
	out.CurrentPTS = endPTS
	return out, nil
}

// EndDaySimple records summary counts and closes the day in one step.
func EndDaySimple(s model.TrackerState, endPTS, matches, wins int) (model.TrackerState, error) {
	out, err := RecordTally(s, matches, wins)
	if err != nil {
		return s, err
	}
	return EndDay(out, endPTS)
}

// DiscardDay drops the open day without recording it and restores the
// score it started from.
func DiscardDay(s model.TrackerState) (model.TrackerState, error) {
	if s.Current == nil {
		return s, ErrNoActiveDay
	}
	out := s.Clone()
	out.CurrentPTS = out.Current.StartPTS
	out.Current = nil
	return out, nil
}

// SetTarget changes the target score.
func SetTarget(s model.TrackerState, target int) (model.TrackerState, error) {
	if target <= 0 {
		return s, fmt.Errorf("%w: %d", ErrInvalidTarget, target)
	}
	out := s.Clone()
	out.TargetPTS = target
	return out, nil
}

// SetCurrentPTS overrides the current score.
func SetCurrentPTS(s model.TrackerState, pts int) model.TrackerState {
	out := s.Clone()
	out.CurrentPTS = pts
	return out
}
