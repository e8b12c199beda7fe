package usecase

import (
	"fmt"
	"math"

	"github.com/google/cel-go/cel"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/entity"
)

// achievementRules maps catalog IDs to the CEL condition that unlocks them.
var achievementRules = map[string]string{
	entity.AchievementFirstStep:  `quizzesCompleted >= 1`,
	entity.AchievementStreak3:    `streak >= 3`,
	entity.AchievementHighScore:  `percentage == 1.0`,
	entity.AchievementCombo5:     `maxCorrectStreak >= 5`,
	entity.AchievementSpeedster:  `timeTakenSeconds < 60 && totalQuestions >= 3`,
	entity.AchievementDedicated:  `xp >= 1000`,
	entity.AchievementQuizMaster: `quizzesCompleted >= 10`,
}

// NeutralOutcome is used for XP grants that are not tied to a quiz attempt.
// None of the outcome-based rules can match it.
func NeutralOutcome() entity.QuizOutcome {
	return entity.QuizOutcome{TimeTakenSeconds: math.Inf(1)}
}

// AchievementEvaluator decides which catalog achievements a record newly earns.
type AchievementEvaluator interface {
	// Evaluate returns achievements not yet owned whose rule holds, in catalog order.
	Evaluate(stats *entity.UserStats, outcome entity.QuizOutcome) []entity.Achievement
}

type compiledRule struct {
	achievement entity.Achievement
	program     cel.Program
}

type celAchievementEvaluator struct {
	rules  []compiledRule
	logger logrus.FieldLogger
}

// NewAchievementEvaluator compiles every catalog rule once.
func NewAchievementEvaluator(logger logrus.FieldLogger) (AchievementEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("xp", cel.IntType),
		cel.Variable("streak", cel.IntType),
		cel.Variable("quizzesCompleted", cel.IntType),
		cel.Variable("percentage", cel.DoubleType),
		cel.Variable("timeTakenSeconds", cel.DoubleType),
		cel.Variable("maxCorrectStreak", cel.IntType),
		cel.Variable("totalQuestions", cel.IntType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("build rule env: %w", err)
	}

	catalog := entity.Achievements()
	rules := make([]compiledRule, 0, len(catalog))
	for _, a := range catalog {
		expr, ok := achievementRules[a.ID]
		if !ok {
			return nil, fmt.Errorf("no rule for achievement %q", a.ID)
		}
		ast, iss := env.Compile(expr)
		if iss.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", a.ID, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("rule %q must evaluate to bool, got %s", a.ID, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %q: %w", a.ID, err)
		}
		rules = append(rules, compiledRule{achievement: a, program: prg})
	}
	return &celAchievementEvaluator{rules: rules, logger: logger}, nil
}

func (e *celAchievementEvaluator) Evaluate(stats *entity.UserStats, outcome entity.QuizOutcome) []entity.Achievement {
	if stats == nil {
		return nil
	}
	vars := map[string]any{
		"xp":               int64(stats.XP),
		"streak":           int64(stats.Streak),
		"quizzesCompleted": int64(stats.QuizzesCompleted),
		"percentage":       outcome.Percentage,
		"timeTakenSeconds": outcome.TimeTakenSeconds,
		"maxCorrectStreak": int64(outcome.MaxCorrectStreak),
		"totalQuestions":   int64(outcome.TotalQuestions),
	}

	pending := lo.Filter(e.rules, func(r compiledRule, _ int) bool {
		return !stats.HasAchievement(r.achievement.ID)
	})
	var unlocked []entity.Achievement
	for _, r := range pending {
		out, _, err := r.program.Eval(vars)
		if err != nil {
			e.logger.WithError(err).WithField("achievement", r.achievement.ID).Warn("achievement rule failed")
			continue
		}
		if ok, _ := out.Value().(bool); ok {
			unlocked = append(unlocked, r.achievement)
		}
	}
	return unlocked
}
