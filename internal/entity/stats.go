package entity

import (
	"time"

	"github.com/samber/lo"
)

// MaxHistoryItems caps the number of quiz results kept on a stats record.
const MaxHistoryItems = 10

// UserStats is the persisted gamification record of one identity.
type UserStats struct {
	XP                int               `json:"xp"`
	Streak            int               `json:"streak"`
	LastLogin         time.Time         `json:"lastLogin"`
	QuizzesCompleted  int               `json:"quizzesCompleted"`
	History           []QuizHistoryItem `json:"history"`
	Achievements      []string          `json:"achievements"`
	UsageCount        int               `json:"usageCount"`
	IsPro             bool              `json:"isPro"`
	PreferredLanguage Language          `json:"preferredLanguage"`
}

// QuizHistoryItem records one completed quiz. Items are never mutated.
type QuizHistoryItem struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	XPEarned       int       `json:"xpEarned"`
}

// NewUserStats returns the default record created the first time an identity is seen.
func NewUserStats(now time.Time) *UserStats {
	return &UserStats{
		Streak:            1,
		LastLogin:         now,
		History:           []QuizHistoryItem{},
		Achievements:      []string{},
		PreferredLanguage: LanguageEnglish,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing stored slices.
func (s *UserStats) Clone() *UserStats {
	if s == nil {
		return nil
	}
	out := *s
	out.History = append([]QuizHistoryItem{}, s.History...)
	out.Achievements = append([]string{}, s.Achievements...)
	return &out
}

// HasAchievement reports whether the achievement is already unlocked.
func (s *UserStats) HasAchievement(id string) bool {
	return lo.Contains(s.Achievements, id)
}

// PrependHistory adds the newest item first and evicts the oldest beyond the cap.
func (s *UserStats) PrependHistory(item QuizHistoryItem) {
	s.History = append([]QuizHistoryItem{item}, s.History...)
	if len(s.History) > MaxHistoryItems {
		s.History = s.History[:MaxHistoryItems]
	}
}

// Normalize enforces the record invariants after decoding untrusted JSON.
func (s *UserStats) Normalize(now time.Time) {
	s.XP = max(s.XP, 0)
	s.Streak = max(s.Streak, 0)
	s.QuizzesCompleted = max(s.QuizzesCompleted, 0)
	s.UsageCount = max(s.UsageCount, 0)
	if s.LastLogin.IsZero() {
		s.LastLogin = now
	}
	if s.History == nil {
		s.History = []QuizHistoryItem{}
	}
	if len(s.History) > MaxHistoryItems {
		s.History = s.History[:MaxHistoryItems]
	}
	s.Achievements = lo.Uniq(lo.Filter(s.Achievements, func(id string, _ int) bool {
		_, ok := FindAchievement(id)
		return ok
	}))
	s.PreferredLanguage = NormalizeLanguage(s.PreferredLanguage)
}
