package repository

import (
	"context"

	"github.com/eslsoft/neurostudy/internal/entity"
)

// StatsRepository persists UserStats records keyed by identity.
type StatsRepository interface {
	// Find returns entity.ErrRecordNotFound when nothing is stored and
	// entity.ErrCorruptRecord when the stored value cannot be decoded.
	Find(ctx context.Context, identity string) (*entity.UserStats, error)
	Save(ctx context.Context, identity string, stats *entity.UserStats) error
}
