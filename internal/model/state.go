package model

// DefaultTargetPTS is the goal used when nothing has been stored yet.
const DefaultTargetPTS = 10000

// TrackerState is the full persisted snapshot. Days are kept in the order
// they were closed.
type TrackerState struct {
	CurrentPTS int
	TargetPTS  int
	Days       []GameDay
	Current    *CurrentDay
}

// NewState returns an empty state with the default target.
func NewState() TrackerState {
	return TrackerState{TargetPTS: DefaultTargetPTS}
}

// Clone returns a copy that shares no slices or pointers with s, so a
// transition can modify it without touching the snapshot it came from.
func (s TrackerState) Clone() TrackerState {
	out := s
	if s.Days != nil {
		out.Days = make([]GameDay, len(s.Days))
		copy(out.Days, s.Days)
	}
	if s.Current != nil {
		cur := *s.Current
		if dr, ok := cur.Record.(DetailedRecord); ok {
			matches := make([]Match, len(dr.Matches))
			copy(matches, dr.Matches)
			cur.Record = DetailedRecord{Matches: matches}
		}
		out.Current = &cur
	}
	return out
}
