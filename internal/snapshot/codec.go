// Package snapshot converts tracker state to and from its persisted JSON document.
package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/ptstrack/internal/model"
)

// dateLayouts are tried in order when reading a stored date.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// DecodeResult holds a decoded state and counts of repaired input.
type DecodeResult struct {
	State model.TrackerState

	Rejected  int // matches dropped for an unknown result
	Clamped   int // negative counts or out-of-range wins that were clamped
	BadDates  int // dates that could not be parsed and were left zero
	Generated int // days that had no id and were given one
}

// Decode parses a stored document. An empty or whitespace-only document
// yields the default state. Malformed JSON is an error; contract
// violations inside a well-formed document are repaired and counted.
func Decode(data []byte) (DecodeResult, error) {
	if strings.TrimSpace(string(data)) == "" {
		return DecodeResult{State: model.NewState()}, nil
	}

	var doc RawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return DecodeResult{}, fmt.Errorf("decoding tracker document: %w", err)
	}

	var res DecodeResult
	res.State.CurrentPTS = int(doc.CurrentPTS)
	res.State.TargetPTS = int(doc.TargetPTS)
	if res.State.TargetPTS == 0 {
		res.State.TargetPTS = model.DefaultTargetPTS
	}

	for _, rd := range doc.GameDays {
		res.State.Days = append(res.State.Days, res.decodeDay(rd))
	}
	if doc.CurrentDay != nil {
		gd := res.decodeDay(*doc.CurrentDay)
		res.State.Current = &model.CurrentDay{
			ID:       gd.ID,
			Date:     gd.Date,
			StartPTS: gd.StartPTS,
			Record:   gd.Record,
		}
	}
	return res, nil
}

func (res *DecodeResult) decodeDay(rd RawDay) model.GameDay {
	day := model.GameDay{
		ID:       rd.ID,
		Date:     res.parseDate(rd.Date),
		StartPTS: int(rd.StartTimePTS),
		Complete: rd.IsComplete,
	}
	if day.ID == "" {
		day.ID = uuid.NewString()
		res.Generated++
	}
	if day.Date.IsZero() && rd.StartDate != "" {
		day.Date = res.parseDate(rd.StartDate)
	}
	if rd.EndTimePTS != nil {
		end := int(*rd.EndTimePTS)
		day.EndPTS = &end
	}

	switch {
	case len(rd.Matches) > 0:
		var matches []model.Match
		for _, rm := range rd.Matches {
			m, ok := res.decodeMatch(rm)
			if !ok {
				res.Rejected++
				continue
			}
			matches = append(matches, m)
		}
		if len(matches) > 0 {
			day.Record = model.DetailedRecord{Matches: matches}
		} else if day.Complete {
			day.Record = model.SimpleRecord{}
		}
	case rd.MatchesCount != nil:
		count := int(*rd.MatchesCount)
		wins := 0
		if rd.Wins != nil {
			wins = int(*rd.Wins)
		}
		if count < 0 || wins < 0 || wins > count {
			count = max(count, 0)
			wins = min(max(wins, 0), count)
			res.Clamped++
		}
		day.Record = model.SimpleRecord{MatchesCount: count, Wins: wins}
	}
	return day
}

func (res *DecodeResult) decodeMatch(rm RawMatch) (model.Match, bool) {
	result, ok := model.ParseResult(rm.Result)
	if !ok {
		return model.Match{}, false
	}
	m := model.Match{
		Result:   result,
		Hero:     strings.TrimSpace(rm.Hero),
		Duration: max(int(rm.Duration), 0),
		Date:     res.parseDate(rm.Date),
	}
	if slot, ok := model.ParseTimeOfDay(rm.TimeOfDay); ok {
		m.TimeOfDay = slot
	}
	if rm.PTSChange != nil {
		v := int(*rm.PTSChange)
		m.PTSChange = &v
	}
	return m, true
}

func (res *DecodeResult) parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	res.BadDates++
	return time.Time{}
}

// Encode renders state as an indented document, including the derived
// per-day fields other readers of the format expect.
func Encode(state model.TrackerState) ([]byte, error) {
	doc := RawDocument{
		CurrentPTS: flexInt(state.CurrentPTS),
		TargetPTS:  flexInt(state.TargetPTS),
		GameDays:   make([]RawDay, 0, len(state.Days)),
	}
	for _, d := range state.Days {
		doc.GameDays = append(doc.GameDays, encodeDay(d))
	}
	if c := state.Current; c != nil {
		rd := encodeDay(model.GameDay{
			ID:       c.ID,
			Date:     c.Date,
			StartPTS: c.StartPTS,
			Record:   c.Record,
		})
		rd.StartDate = rd.Date
		doc.CurrentDay = &rd
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tracker document: %w", err)
	}
	return data, nil
}

func encodeDay(d model.GameDay) RawDay {
	rd := RawDay{
		ID:           d.ID,
		Date:         formatDate(d.Date),
		StartTimePTS: flexInt(d.StartPTS),
		Matches:      []RawMatch{},
		IsComplete:   d.Complete,
	}
	if d.EndPTS != nil {
		rd.EndTimePTS = flexPtr(*d.EndPTS)
	}
	if dr, ok := d.Record.(model.DetailedRecord); ok {
		for _, m := range dr.Matches {
			rm := RawMatch{
				Hero:      m.Hero,
				Result:    string(m.Result),
				TimeOfDay: string(m.TimeOfDay),
				Duration:  flexInt(m.Duration),
				Date:      formatDate(m.Date),
			}
			if m.PTSChange != nil {
				rm.PTSChange = flexPtr(*m.PTSChange)
			}
			rd.Matches = append(rd.Matches, rm)
		}
	}
	if d.Record != nil {
		rd.MatchesCount = flexPtr(d.Matches())
		rd.Wins = flexPtr(d.Wins())
		rd.Losses = flexPtr(d.Losses())
		rd.Winrate = flexPtr(d.Winrate())
	}
	if change, ok := d.PTSChange(); ok {
		rd.PTSChange = flexPtr(change)
	}
	return rd
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
