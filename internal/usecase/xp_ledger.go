package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/eslsoft/neurostudy/internal/entity"
)

const (
	xpPerCorrectAnswer = 10
	completionBonusXP  = 50
	speedBonusXP       = 20
	speedLimitSeconds  = 60
	speedMinQuestions  = 3
)

// XPAward describes what a single ledger operation granted.
type XPAward struct {
	Stats *entity.UserStats
	// XPEarned excludes achievement rewards, which are reported in BonusXP.
	XPEarned int
	BonusXP  int
	Unlocked []entity.Achievement
}

// XPLedger applies XP grants and quiz completions to the stats record.
type XPLedger interface {
	AddXP(ctx context.Context, identity string, amount int) (*XPAward, error)
	CompleteQuiz(ctx context.Context, identity string, score, total int, timeTakenSeconds float64, maxCorrectStreak int) (*XPAward, error)
}

// NewXPLedger wires the stats store, the achievement rules and an event sink.
func NewXPLedger(store StatsStore, evaluator AchievementEvaluator, events EventPublisher) XPLedger {
	if events == nil {
		events = NopPublisher()
	}
	return &xpLedger{
		store:     store,
		evaluator: evaluator,
		events:    events,
		clock:     time.Now,
		newID:     newHistoryID,
	}
}

type xpLedger struct {
	store     StatsStore
	evaluator AchievementEvaluator
	events    EventPublisher
	clock     func() time.Time
	newID     func() string
}

func newHistoryID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func (l *xpLedger) AddXP(ctx context.Context, identity string, amount int) (*XPAward, error) {
	if amount < 0 {
		return nil, entity.ErrInvalidXPAmount
	}

	award := &XPAward{XPEarned: amount}
	stats, err := l.store.Update(ctx, identity, func(stats *entity.UserStats) error {
		stats.XP += amount
		l.unlock(stats, NeutralOutcome(), award)
		return nil
	})
	if err != nil {
		return nil, err
	}
	award.Stats = stats

	l.publish(ctx, identity, "", award)
	return award, nil
}

func (l *xpLedger) CompleteQuiz(ctx context.Context, identity string, score, total int, timeTakenSeconds float64, maxCorrectStreak int) (*XPAward, error) {
	total = max(total, 0)
	score = min(max(score, 0), total)

	earned := score*xpPerCorrectAnswer + completionBonusXP
	if timeTakenSeconds < speedLimitSeconds && total >= speedMinQuestions {
		earned += speedBonusXP
	}
	outcome := entity.QuizOutcome{
		TimeTakenSeconds: timeTakenSeconds,
		MaxCorrectStreak: maxCorrectStreak,
		TotalQuestions:   total,
	}
	if total > 0 {
		outcome.Percentage = float64(score) / float64(total)
	}

	award := &XPAward{XPEarned: earned}
	now := l.clock()
	stats, err := l.store.Update(ctx, identity, func(stats *entity.UserStats) error {
		stats.PrependHistory(entity.QuizHistoryItem{
			ID:             l.newID(),
			Date:           now.UTC(),
			Score:          score,
			TotalQuestions: total,
			XPEarned:       earned,
		})
		stats.QuizzesCompleted++
		stats.XP += earned
		l.unlock(stats, outcome, award)
		return nil
	})
	if err != nil {
		return nil, err
	}
	award.Stats = stats

	l.publish(ctx, identity, entity.EventQuizCompleted, award)
	return award, nil
}

// unlock runs a single evaluation pass; bonus XP does not trigger another one.
func (l *xpLedger) unlock(stats *entity.UserStats, outcome entity.QuizOutcome, award *XPAward) {
	unlocked := l.evaluator.Evaluate(stats, outcome)
	award.Unlocked = unlocked
	award.BonusXP = lo.SumBy(unlocked, func(a entity.Achievement) int { return a.XPReward })
	stats.XP += award.BonusXP
	stats.Achievements = append(stats.Achievements, lo.Map(unlocked, func(a entity.Achievement, _ int) string { return a.ID })...)
}

func (l *xpLedger) publish(ctx context.Context, identity, kind string, award *XPAward) {
	identity = entity.NormalizeIdentity(identity)
	if identity == "" {
		return
	}
	now := l.clock().UTC()
	if kind == "" {
		kind = entity.EventXPAwarded
	}
	l.events.Publish(ctx, entity.GamificationEvent{
		Type:      kind,
		Identity:  identity,
		Points:    award.XPEarned,
		NewXP:     award.Stats.XP,
		Timestamp: now,
	})
	for _, a := range award.Unlocked {
		l.events.Publish(ctx, entity.GamificationEvent{
			Type:          entity.EventAchievementUnlocked,
			Identity:      identity,
			AchievementID: a.ID,
			Points:        a.XPReward,
			NewXP:         award.Stats.XP,
			Timestamp:     now,
		})
	}
}
