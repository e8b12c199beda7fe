package usecase

import (
	"time"

	"github.com/eslsoft/neurostudy/internal/entity"
)

// StreakEvaluator updates the day streak once per session start.
type StreakEvaluator struct {
	loc *time.Location
}

// NewStreakEvaluator counts calendar days in loc. A nil location means local time.
func NewStreakEvaluator(loc *time.Location) *StreakEvaluator {
	if loc == nil {
		loc = time.Local
	}
	return &StreakEvaluator{loc: loc}
}

// Apply adjusts Streak from the gap since LastLogin and stamps LastLogin with now.
func (e *StreakEvaluator) Apply(stats *entity.UserStats, now time.Time) {
	switch days := e.daysBetween(stats.LastLogin, now); {
	case days <= 0:
		// Same day or a clock that moved backwards.
		if stats.Streak == 0 {
			stats.Streak = 1
		}
	case days == 1:
		stats.Streak++
	default:
		stats.Streak = 0
	}
	stats.LastLogin = now
}

func (e *StreakEvaluator) daysBetween(from, to time.Time) int {
	return int(civilDate(to, e.loc).Sub(civilDate(from, e.loc)).Hours() / 24)
}

// civilDate maps t to midnight UTC of its calendar date in loc so that DST
// transitions do not distort day arithmetic.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
