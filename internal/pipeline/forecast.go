package pipeline

import (
	"math"
	"math/big"

	"github.com/theirongolddev/ptstrack/internal/model"
)

const (
	// PTSPerWin and PTSPerLoss are the flat per-match score swings.
	PTSPerWin  = 20
	PTSPerLoss = 20

	// DefaultMinSampleSize is the match count below which no estimate is made.
	DefaultMinSampleSize = 5
)

// Forecaster projects days remaining to the target score from the all-time
// winrate and the average matches per closed day.
type Forecaster struct {
	MinSampleSize int
}

// NewForecaster returns a Forecaster requiring minSample matches. Values
// below 1 fall back to DefaultMinSampleSize.
func NewForecaster(minSample int) Forecaster {
	if minSample < 1 {
		minSample = DefaultMinSampleSize
	}
	return Forecaster{MinSampleSize: minSample}
}

// EstimateDaysToTarget forecasts with the default sample threshold.
func EstimateDaysToTarget(state model.TrackerState) model.Outcome {
	return NewForecaster(DefaultMinSampleSize).Estimate(state)
}

// Estimate returns the forecast outcome for state. It never modifies state.
func (f Forecaster) Estimate(state model.TrackerState) model.Outcome {
	minSample := f.MinSampleSize
	if minSample < 1 {
		minSample = DefaultMinSampleSize
	}

	need := new(big.Int).Sub(big.NewInt(int64(state.TargetPTS)), big.NewInt(int64(state.CurrentPTS)))
	out := model.Outcome{PTSNeeded: clampInt(need)}
	if need.Sign() <= 0 {
		out.Kind = model.OutcomeAlreadyAchieved
		return out
	}

	all := WindowedWinrate(CanonicalMatches(state), AllTime())
	out.SampleSize = all.Count
	if all.Count == 0 {
		return insufficient(out, model.ReasonNoMatches)
	}
	if all.Count < minSample {
		return insufficient(out, model.ReasonSmallSample)
	}

	losses := all.Count - all.Wins
	out.Winrate = float64(all.Wins) / float64(all.Count)
	out.ExpectedPerMatch = out.Winrate*PTSPerWin - (1-out.Winrate)*PTSPerLoss

	// net PTS over the whole sample; expected per match is net/Count
	net := new(big.Int).Sub(
		mul(all.Wins, PTSPerWin),
		mul(losses, PTSPerLoss),
	)
	if net.Sign() <= 0 {
		out.Kind = model.OutcomeUnreachable
		return out
	}
	count := big.NewInt(int64(all.Count))
	out.MatchesNeeded = clampInt(ceilDiv(new(big.Int).Mul(need, count), net))

	dayCount := 0
	dayMatches := new(big.Int)
	for _, d := range state.Days {
		if d.Record == nil {
			continue
		}
		dayCount++
		dayMatches.Add(dayMatches, big.NewInt(int64(max(d.Matches(), 0))))
	}
	out.CompletedDays = dayCount
	if dayCount == 0 {
		return insufficient(out, model.ReasonNoCompletedDays)
	}
	totalMatches, _ := new(big.Float).SetInt(dayMatches).Float64()
	out.AvgMatchesPerDay = totalMatches / float64(dayCount)
	if dayMatches.Sign() <= 0 {
		return insufficient(out, model.ReasonNoActivity)
	}

	// ceil((PTSNeeded / (net/Count)) / (dayMatches/dayCount))
	num := new(big.Int).Mul(need, count)
	num.Mul(num, big.NewInt(int64(dayCount)))
	den := new(big.Int).Mul(net, dayMatches)
	out.Kind = model.OutcomeEstimate
	out.Days = clampInt(ceilDiv(num, den))
	return out
}

func insufficient(o model.Outcome, reason string) model.Outcome {
	o.Kind = model.OutcomeInsufficientData
	o.Reason = reason
	return o
}

func mul(a, b int) *big.Int {
	return new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(int64(b)))
}

// ceilDiv divides positive integers rounding up.
func ceilDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// clampInt converts v to int, saturating at the int range.
func clampInt(v *big.Int) int {
	if v.IsInt64() {
		if n := v.Int64(); n >= math.MinInt && n <= math.MaxInt {
			return int(n)
		}
	}
	if v.Sign() < 0 {
		return math.MinInt
	}
	return math.MaxInt
}
