package usecase

import (
	"math"
	"testing"

	"github.com/eslsoft/neurostudy/internal/entity"
)

func ids(achievements []entity.Achievement) []string {
	out := make([]string, 0, len(achievements))
	for _, a := range achievements {
		out = append(out, a.ID)
	}
	return out
}

func TestAchievementEvaluatorRules(t *testing.T) {
	evaluator, err := NewAchievementEvaluator(quietLogger())
	if err != nil {
		t.Fatalf("NewAchievementEvaluator: %v", err)
	}

	slow := entity.QuizOutcome{TimeTakenSeconds: 300, TotalQuestions: 5, Percentage: 0.4, MaxCorrectStreak: 1}
	tests := []struct {
		name    string
		stats   entity.UserStats
		outcome entity.QuizOutcome
		want    []string
	}{
		{name: "nothing", stats: entity.UserStats{}, outcome: slow, want: nil},
		{name: "first quiz", stats: entity.UserStats{QuizzesCompleted: 1}, outcome: slow, want: []string{entity.AchievementFirstStep}},
		{name: "streak", stats: entity.UserStats{Streak: 3}, outcome: slow, want: []string{entity.AchievementStreak3}},
		{name: "perfect score", stats: entity.UserStats{}, outcome: entity.QuizOutcome{Percentage: 1, TimeTakenSeconds: 300, TotalQuestions: 5}, want: []string{entity.AchievementHighScore}},
		{name: "combo", stats: entity.UserStats{}, outcome: entity.QuizOutcome{MaxCorrectStreak: 5, TimeTakenSeconds: 300}, want: []string{entity.AchievementCombo5}},
		{name: "speedster", stats: entity.UserStats{}, outcome: entity.QuizOutcome{TimeTakenSeconds: 59.9, TotalQuestions: 3}, want: []string{entity.AchievementSpeedster}},
		{name: "fast but too short", stats: entity.UserStats{}, outcome: entity.QuizOutcome{TimeTakenSeconds: 10, TotalQuestions: 2}, want: nil},
		{name: "exactly sixty seconds", stats: entity.UserStats{}, outcome: entity.QuizOutcome{TimeTakenSeconds: 60, TotalQuestions: 5}, want: nil},
		{name: "dedicated", stats: entity.UserStats{XP: 1000}, outcome: slow, want: []string{entity.AchievementDedicated}},
		{name: "quiz master also first step", stats: entity.UserStats{QuizzesCompleted: 10}, outcome: slow,
			want: []string{entity.AchievementFirstStep, entity.AchievementQuizMaster}},
		{name: "catalog order", stats: entity.UserStats{XP: 2000, Streak: 3, QuizzesCompleted: 1},
			outcome: entity.QuizOutcome{Percentage: 1, TimeTakenSeconds: 30, TotalQuestions: 5, MaxCorrectStreak: 5},
			want: []string{
				entity.AchievementFirstStep, entity.AchievementStreak3, entity.AchievementHighScore,
				entity.AchievementCombo5, entity.AchievementSpeedster, entity.AchievementDedicated,
			}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(evaluator.Evaluate(&tt.stats, tt.outcome))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestAchievementEvaluatorIsIdempotent(t *testing.T) {
	evaluator, err := NewAchievementEvaluator(quietLogger())
	if err != nil {
		t.Fatalf("NewAchievementEvaluator: %v", err)
	}
	stats := &entity.UserStats{QuizzesCompleted: 1, Achievements: []string{}}
	outcome := entity.QuizOutcome{Percentage: 1, TimeTakenSeconds: 120, TotalQuestions: 4}

	first := evaluator.Evaluate(stats, outcome)
	if len(first) != 2 {
		t.Fatalf("expected first_step and high_score, got %v", ids(first))
	}
	stats.Achievements = append(stats.Achievements, ids(first)...)

	if again := evaluator.Evaluate(stats, outcome); len(again) != 0 {
		t.Fatalf("expected no new unlocks on re-evaluation, got %v", ids(again))
	}
}

func TestNeutralOutcomeUnlocksNoOutcomeRules(t *testing.T) {
	evaluator, err := NewAchievementEvaluator(quietLogger())
	if err != nil {
		t.Fatalf("NewAchievementEvaluator: %v", err)
	}
	outcome := NeutralOutcome()
	if !math.IsInf(outcome.TimeTakenSeconds, 1) {
		t.Fatalf("expected infinite time, got %v", outcome.TimeTakenSeconds)
	}
	if got := evaluator.Evaluate(&entity.UserStats{}, outcome); len(got) != 0 {
		t.Fatalf("expected no unlocks, got %v", ids(got))
	}
}
