package usecase

import (
	"context"
	"time"

	"github.com/eslsoft/neurostudy/internal/entity"
)

// DefaultMaxFreeUploads is the number of documents a free account may process.
const DefaultMaxFreeUploads = 3

// ProfileUsecase covers the non-reward parts of a user's stats record.
type ProfileUsecase interface {
	// BeginSession applies the day streak and returns the refreshed record.
	BeginSession(ctx context.Context, identity string) (*entity.UserStats, error)
	Stats(ctx context.Context, identity string) (*entity.UserStats, error)
	SetLanguage(ctx context.Context, identity string, lang entity.Language) (*entity.UserStats, error)
	IncrementUsage(ctx context.Context, identity string) (*entity.UserStats, error)
	TogglePro(ctx context.Context, identity string) (*entity.UserStats, error)
	CanUpload(stats *entity.UserStats) bool
}

// NewProfileUsecase wires the stats store and streak rules.
func NewProfileUsecase(store StatsStore, streak *StreakEvaluator, maxFreeUploads int) ProfileUsecase {
	if maxFreeUploads < 0 {
		maxFreeUploads = DefaultMaxFreeUploads
	}
	return &profileUsecase{
		store:          store,
		streak:         streak,
		maxFreeUploads: maxFreeUploads,
		clock:          time.Now,
	}
}

type profileUsecase struct {
	store          StatsStore
	streak         *StreakEvaluator
	maxFreeUploads int
	clock          func() time.Time
}

func (u *profileUsecase) BeginSession(ctx context.Context, identity string) (*entity.UserStats, error) {
	return u.store.Update(ctx, identity, func(stats *entity.UserStats) error {
		u.streak.Apply(stats, u.clock())
		return nil
	})
}

func (u *profileUsecase) Stats(ctx context.Context, identity string) (*entity.UserStats, error) {
	return u.store.Load(ctx, identity)
}

func (u *profileUsecase) SetLanguage(ctx context.Context, identity string, lang entity.Language) (*entity.UserStats, error) {
	switch lang {
	case entity.LanguageEnglish, entity.LanguageSinhala:
	default:
		return nil, entity.ErrUnsupportedLanguage
	}
	return u.store.Update(ctx, identity, func(stats *entity.UserStats) error {
		if lang.RequiresPro() && !stats.IsPro {
			return entity.ErrProRequired
		}
		stats.PreferredLanguage = lang
		return nil
	})
}

func (u *profileUsecase) IncrementUsage(ctx context.Context, identity string) (*entity.UserStats, error) {
	return u.store.Update(ctx, identity, func(stats *entity.UserStats) error {
		stats.UsageCount++
		return nil
	})
}

func (u *profileUsecase) TogglePro(ctx context.Context, identity string) (*entity.UserStats, error) {
	return u.store.Update(ctx, identity, func(stats *entity.UserStats) error {
		stats.IsPro = !stats.IsPro
		return nil
	})
}

func (u *profileUsecase) CanUpload(stats *entity.UserStats) bool {
	if stats == nil {
		return false
	}
	return stats.IsPro || stats.UsageCount < u.maxFreeUploads
}
