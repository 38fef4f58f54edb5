package snapshot

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// RawDocument is the persisted tracker document. Field names match the
// browser-storage layout so exported files stay interchangeable.
type RawDocument struct {
	CurrentPTS flexInt  `json:"currentPTS"`
	TargetPTS  flexInt  `json:"targetPTS"`
	GameDays   []RawDay `json:"gameDays"`
	CurrentDay *RawDay  `json:"currentDay"`
}

// RawDay is one game day. The shape is decided by which fields are
// present: a non-empty matches list marks a detailed day, a matchesCount
// marks a simple day.
type RawDay struct {
	ID           string     `json:"id,omitempty"`
	Date         string     `json:"date"`
	StartDate    string     `json:"startDate,omitempty"`
	EndDate      string     `json:"endDate,omitempty"`
	StartTimePTS flexInt    `json:"startTimePTS"`
	EndTimePTS   *flexInt   `json:"endTimePTS,omitempty"`
	Matches      []RawMatch `json:"matches"`
	IsComplete   bool       `json:"isComplete"`

	// Derived on write; only matchesCount and wins are read back.
	MatchesCount *flexInt `json:"matchesCount,omitempty"`
	Wins         *flexInt `json:"wins,omitempty"`
	Losses       *flexInt `json:"losses,omitempty"`
	Winrate      *flexInt `json:"winrate,omitempty"`
	PTSChange    *flexInt `json:"ptsChange,omitempty"`
}

// RawMatch is one detailed match entry.
type RawMatch struct {
	Hero      string   `json:"hero,omitempty"`
	Result    string   `json:"result"`
	PTSChange *flexInt `json:"ptsChange,omitempty"`
	TimeOfDay string   `json:"timeOfDay,omitempty"`
	Duration  flexInt  `json:"duration,omitempty"`
	Date      string   `json:"date"`
}

// flexInt decodes integers written as JSON numbers, numeric strings or
// null. Fractional values are truncated.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		b = []byte(s)
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = flexInt(math.Trunc(v))
	return nil
}

func flexPtr(v int) *flexInt {
	f := flexInt(v)
	return &f
}
