package pipeline

import "github.com/theirongolddev/ptstrack/internal/model"

var milestones = []struct {
	threshold int
	title     string
}{
	{1000, "Rookie"},
	{1500, "Fighter"},
	{2000, "Professional"},
	{3000, "Legend"},
	{4000, "PTS God"},
	{5000, "Unbreakable"},
}

// Achievements lists every PTS milestone in ascending order, marking those
// reached by current.
func Achievements(current int) []model.Achievement {
	out := make([]model.Achievement, len(milestones))
	for i, m := range milestones {
		out[i] = model.Achievement{
			Threshold: m.threshold,
			Title:     m.title,
			Unlocked:  current >= m.threshold,
		}
	}
	return out
}

// UnlockedCount returns how many achievements are unlocked.
func UnlockedCount(achievements []model.Achievement) int {
	n := 0
	for _, a := range achievements {
		if a.Unlocked {
			n++
		}
	}
	return n
}
