package entity

import "time"

// Gamification event types.
const (
	EventXPAwarded           = "xp_awarded"
	EventQuizCompleted       = "quiz_completed"
	EventAchievementUnlocked = "achievement_unlocked"
)

// GamificationEvent is broadcast whenever a user's rewards change.
type GamificationEvent struct {
	Type          string    `json:"type"`
	Identity      string    `json:"identity"`
	AchievementID string    `json:"achievementId,omitempty"`
	Points        int       `json:"points,omitempty"`
	NewXP         int       `json:"newXp,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
