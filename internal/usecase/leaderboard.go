package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/repository"
)

// LeaderboardSize is the number of rows shown.
const LeaderboardSize = 10

// LeaderboardUsecase ranks every account visible in the local store.
type LeaderboardUsecase interface {
	Top(ctx context.Context, currentIdentity string) ([]entity.LeaderboardEntry, error)
}

// NewLeaderboardUsecase wires the account listing and stats lookups.
func NewLeaderboardUsecase(accounts repository.AccountRepository, stats repository.StatsRepository) LeaderboardUsecase {
	return &leaderboardUsecase{accounts: accounts, stats: stats}
}

type leaderboardUsecase struct {
	accounts repository.AccountRepository
	stats    repository.StatsRepository
}

func (u *leaderboardUsecase) Top(ctx context.Context, currentIdentity string) ([]entity.LeaderboardEntry, error) {
	identities, err := u.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	currentIdentity = entity.NormalizeIdentity(currentIdentity)

	entries := make([]entity.LeaderboardEntry, 0, len(identities))
	for _, identity := range identities {
		xp := 0
		record, err := u.stats.Find(ctx, identity)
		switch {
		case err == nil:
			xp = record.XP
		case errors.Is(err, entity.ErrRecordNotFound), errors.Is(err, entity.ErrCorruptRecord):
		default:
			return nil, fmt.Errorf("load stats for %s: %w", identity, err)
		}
		entries = append(entries, entity.LeaderboardEntry{
			Name:          entity.DisplayName(identity),
			XP:            xp,
			IsCurrentUser: identity == currentIdentity,
		})
	}

	slices.SortStableFunc(entries, func(a, b entity.LeaderboardEntry) int {
		if c := cmp.Compare(b.XP, a.XP); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	entries = lo.Slice(entries, 0, LeaderboardSize)
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
