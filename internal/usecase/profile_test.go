package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eslsoft/neurostudy/internal/entity"
)

func newTestProfile(t *testing.T) (*profileUsecase, *ledgerFixture) {
	t.Helper()
	fx := newLedgerFixture(t)
	profile := NewProfileUsecase(fx.store, NewStreakEvaluator(time.UTC), DefaultMaxFreeUploads).(*profileUsecase)
	profile.clock = fx.clock.Now
	return profile, fx
}

func TestProfileBeginSessionAppliesStreak(t *testing.T) {
	ctx := context.Background()
	profile, fx := newTestProfile(t)

	seed := entity.NewUserStats(fx.clock.Now().AddDate(0, 0, -1))
	seed.Streak = 2
	if err := fx.repo.Save(ctx, ada, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stats, err := profile.BeginSession(ctx, ada)
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if stats.Streak != 3 || !stats.LastLogin.Equal(fx.clock.Now()) {
		t.Fatalf("unexpected stats after session start: %+v", stats)
	}
	if fx.repo.get(ada).Streak != 3 {
		t.Fatalf("streak not persisted")
	}
}

func TestProfileSetLanguage(t *testing.T) {
	ctx := context.Background()
	profile, _ := newTestProfile(t)

	if _, err := profile.SetLanguage(ctx, ada, entity.LanguageSinhala); !errors.Is(err, entity.ErrProRequired) {
		t.Fatalf("expected ErrProRequired, got %v", err)
	}
	if _, err := profile.SetLanguage(ctx, ada, entity.Language("fr")); !errors.Is(err, entity.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}

	if _, err := profile.TogglePro(ctx, ada); err != nil {
		t.Fatalf("TogglePro: %v", err)
	}
	stats, err := profile.SetLanguage(ctx, ada, entity.LanguageSinhala)
	if err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	if stats.PreferredLanguage != entity.LanguageSinhala || !stats.IsPro {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestProfileUsageGate(t *testing.T) {
	ctx := context.Background()
	profile, _ := newTestProfile(t)

	var stats *entity.UserStats
	for i := 0; i < DefaultMaxFreeUploads; i++ {
		current, err := profile.Stats(ctx, ada)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if !profile.CanUpload(current) {
			t.Fatalf("upload %d should be allowed", i+1)
		}
		if stats, err = profile.IncrementUsage(ctx, ada); err != nil {
			t.Fatalf("IncrementUsage: %v", err)
		}
	}
	if profile.CanUpload(stats) {
		t.Fatalf("free tier exhausted after %d uploads", DefaultMaxFreeUploads)
	}
	stats, err := profile.TogglePro(ctx, ada)
	if err != nil {
		t.Fatalf("TogglePro: %v", err)
	}
	if !profile.CanUpload(stats) {
		t.Fatalf("pro accounts are not gated")
	}
}
