package entity

// Achievement is read-only catalog data describing an unlockable reward.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IconName    string `json:"iconName"`
	Requirement string `json:"requirement"`
	XPReward    int    `json:"xpReward"`
}

const (
	AchievementFirstStep  = "first_step"
	AchievementStreak3    = "streak_3"
	AchievementHighScore  = "high_score"
	AchievementCombo5     = "combo_5"
	AchievementSpeedster  = "speedster"
	AchievementDedicated  = "dedicated"
	AchievementQuizMaster = "quiz_master"
)

var achievementCatalog = []Achievement{
	{ID: AchievementFirstStep, Title: "First Step", Description: "Complete your first quiz", IconName: "BookOpen", Requirement: "1 Quiz", XPReward: 50},
	{ID: AchievementStreak3, Title: "On Fire", Description: "Reach a 3-day learning streak", IconName: "Flame", Requirement: "3 Days", XPReward: 150},
	{ID: AchievementHighScore, Title: "Sharpshooter", Description: "Score 100% on a quiz", IconName: "Target", Requirement: "Perfect Score", XPReward: 100},
	{ID: AchievementCombo5, Title: "On a Roll", Description: "Answer 5 questions correctly in a row", IconName: "Zap", Requirement: "5 Streak", XPReward: 150},
	{ID: AchievementSpeedster, Title: "Speedster", Description: "Complete a quiz in under 60 seconds (min 3 questions)", IconName: "Zap", Requirement: "< 60s", XPReward: 200},
	{ID: AchievementDedicated, Title: "Dedicated", Description: "Earn 1000 XP total", IconName: "Trophy", Requirement: "1000 XP", XPReward: 500},
	{ID: AchievementQuizMaster, Title: "Quiz Master", Description: "Complete 10 quizzes", IconName: "Crown", Requirement: "10 Quizzes", XPReward: 300},
}

// Achievements returns a copy of the static catalog in display order.
func Achievements() []Achievement {
	return append([]Achievement{}, achievementCatalog...)
}

// FindAchievement looks up a catalog entry by ID.
func FindAchievement(id string) (Achievement, bool) {
	for _, a := range achievementCatalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// QuizOutcome is the per-attempt signal the achievement rules read besides the stats record.
type QuizOutcome struct {
	Percentage       float64
	TimeTakenSeconds float64
	MaxCorrectStreak int
	TotalQuestions   int
}
