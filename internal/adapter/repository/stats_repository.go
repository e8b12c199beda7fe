package repository

import (
	"context"
	"time"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/repository"
)

type statsRepository struct {
	kv    repository.KeyValueStore
	clock func() time.Time
}

// NewStatsRepository constructs a JSON stats repository over the key-value store.
func NewStatsRepository(kv repository.KeyValueStore) repository.StatsRepository {
	return &statsRepository{kv: kv, clock: time.Now}
}

func (r *statsRepository) Find(ctx context.Context, identity string) (*entity.UserStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := r.clock().UTC()
	// Decoding over the defaults lets fields missing from older records keep their default.
	stats := entity.NewUserStats(now)
	if err := getJSON(ctx, r.kv, statsKey(identity), stats); err != nil {
		return nil, err
	}
	stats.Normalize(now)
	return stats, nil
}

func (r *statsRepository) Save(ctx context.Context, identity string, stats *entity.UserStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return setJSON(ctx, r.kv, statsKey(identity), stats)
}
