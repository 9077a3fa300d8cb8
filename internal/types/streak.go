package types

// StreakThreshold is the run length of consecutive high ratings that counts
// as a streak.
const StreakThreshold = 5

// HighRatingFloor is exclusive: only scores above it extend a streak.
const HighRatingFloor = 3

type StreakSummary struct {
	Streak      string `json:"streak"`
	StreakCount int    `json:"streakCount"`
}

func NewStreakSummary(count int) StreakSummary {
	summary := StreakSummary{Streak: "no", StreakCount: count}
	if count >= StreakThreshold {
		summary.Streak = "yes"
	}
	return summary
}

func (s StreakSummary) HasStreak() bool {
	return s.Streak == "yes"
}
