package model

import "fmt"

// OutcomeKind classifies a forecast.
type OutcomeKind string

const (
	OutcomeInsufficientData OutcomeKind = "insufficient_data"
	OutcomeUnreachable      OutcomeKind = "unreachable"
	OutcomeAlreadyAchieved  OutcomeKind = "already_achieved"
	OutcomeEstimate         OutcomeKind = "estimate"
)

// Reasons attached to OutcomeInsufficientData.
const (
	ReasonNoMatches       = "no matches recorded"
	ReasonSmallSample     = "insufficient sample size"
	ReasonNoCompletedDays = "no completed days"
	ReasonNoActivity      = "no activity"
)

// Outcome is the result of a days-to-target forecast. Only Kind and Reason
// or Days are meaningful for comparison; the remaining fields explain how
// an estimate was reached and are zero when the check that needs them was
// never reached.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Days   int

	PTSNeeded        int
	SampleSize       int
	Winrate          float64 // 0..1
	ExpectedPerMatch float64
	MatchesNeeded    int
	AvgMatchesPerDay float64
	CompletedDays    int
}

// String renders the outcome in one short line.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeEstimate:
		if o.Days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", o.Days)
	case OutcomeAlreadyAchieved:
		return "target reached"
	case OutcomeUnreachable:
		return "unreachable at current winrate"
	case OutcomeInsufficientData:
		return "insufficient data: " + o.Reason
	}
	return "unknown"
}
