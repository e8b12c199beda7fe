package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eslsoft/neurostudy/internal/entity"
)

func newTestStatsStore(repo *fakeStatsRepo, now time.Time) *statsStore {
	store := NewStatsStore(repo, quietLogger()).(*statsStore)
	store.clock = func() time.Time { return now }
	return store
}

func TestStatsStoreLoadCreatesDefault(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	repo := newFakeStatsRepo()
	store := newTestStatsStore(repo, now)

	stats, err := store.Load(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.XP != 0 || stats.Streak != 1 || stats.QuizzesCompleted != 0 || stats.IsPro {
		t.Fatalf("unexpected default record: %+v", stats)
	}
	if !stats.LastLogin.Equal(now) {
		t.Fatalf("expected lastLogin %v, got %v", now, stats.LastLogin)
	}
	if stats.PreferredLanguage != entity.LanguageEnglish {
		t.Fatalf("expected english, got %q", stats.PreferredLanguage)
	}
	if len(stats.History) != 0 || len(stats.Achievements) != 0 {
		t.Fatalf("expected empty collections, got %+v", stats)
	}
	if repo.saves != 1 {
		t.Fatalf("expected default to be persisted once, saves=%d", repo.saves)
	}
}

func TestStatsStoreCorruptRecordFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	repo := newFakeStatsRepo()
	repo.corrupt["ada@example.com"] = true
	store := newTestStatsStore(repo, time.Now())

	stats, err := store.Load(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("corrupt record must not surface an error: %v", err)
	}
	if stats.XP != 0 || stats.Streak != 1 {
		t.Fatalf("expected default record, got %+v", stats)
	}
	if repo.corrupt["ada@example.com"] {
		t.Fatalf("expected corrupt record to be replaced")
	}
}

func TestStatsStorePropagatesStorageErrors(t *testing.T) {
	repo := newFakeStatsRepo()
	repo.findErr = errStorageDown
	store := newTestStatsStore(repo, time.Now())

	if _, err := store.Load(context.Background(), "ada@example.com"); !errors.Is(err, errStorageDown) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestStatsStoreAnonymousIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	repo := newFakeStatsRepo()
	store := newTestStatsStore(repo, time.Now())

	stats, err := store.Update(ctx, "  ", func(s *entity.UserStats) error {
		s.XP += 10
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if stats.XP != 10 {
		t.Fatalf("expected in-memory update, got %+v", stats)
	}
	if repo.saves != 0 {
		t.Fatalf("anonymous records must not be saved, saves=%d", repo.saves)
	}
}

func TestStatsStoreSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	repo := newFakeStatsRepo()
	store := newTestStatsStore(repo, now)

	want := &entity.UserStats{
		XP:                420,
		Streak:            4,
		LastLogin:         now.Add(-time.Hour),
		QuizzesCompleted:  3,
		History:           []entity.QuizHistoryItem{{ID: "h1", Date: now, Score: 4, TotalQuestions: 5, XPEarned: 90}},
		Achievements:      []string{entity.AchievementFirstStep},
		UsageCount:        2,
		IsPro:             true,
		PreferredLanguage: entity.LanguageSinhala,
	}
	if err := store.Save(ctx, "ada@example.com", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.XP != want.XP || got.Streak != want.Streak || !got.LastLogin.Equal(want.LastLogin) ||
		got.UsageCount != want.UsageCount || !got.IsPro || got.PreferredLanguage != want.PreferredLanguage ||
		len(got.History) != 1 || got.History[0] != want.History[0] ||
		len(got.Achievements) != 1 || got.Achievements[0] != entity.AchievementFirstStep {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestStatsStoreUpdateErrorLeavesRecord(t *testing.T) {
	ctx := context.Background()
	repo := newFakeStatsRepo()
	store := newTestStatsStore(repo, time.Now())
	if _, err := store.Load(ctx, "ada@example.com"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	boom := errors.New("boom")
	_, err := store.Update(ctx, "ada@example.com", func(s *entity.UserStats) error {
		s.XP = 999
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if repo.get("ada@example.com").XP != 0 {
		t.Fatalf("failed update must not be persisted")
	}
}

func TestStatsStoreUpdateSerializesWriters(t *testing.T) {
	ctx := context.Background()
	repo := newFakeStatsRepo()
	store := newTestStatsStore(repo, time.Now())

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, "ada@example.com", func(s *entity.UserStats) error {
				s.XP++
				return nil
			})
		}()
	}
	wg.Wait()

	if got := repo.get("ada@example.com").XP; got != writers {
		t.Fatalf("expected xp %d, got %d", writers, got)
	}
}
