package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/repository"
)

// StatsStore loads and persists the gamification record of an identity.
type StatsStore interface {
	// Load returns the stored record, creating and persisting a default one when
	// nothing usable is stored. An empty identity yields an unsaved default.
	Load(ctx context.Context, identity string) (*entity.UserStats, error)
	Save(ctx context.Context, identity string, stats *entity.UserStats) error
	// Update runs fn on the loaded record and saves the result once.
	Update(ctx context.Context, identity string, fn func(*entity.UserStats) error) (*entity.UserStats, error)
}

// NewStatsStore wires the stats repository.
func NewStatsStore(repo repository.StatsRepository, logger logrus.FieldLogger) StatsStore {
	return &statsStore{
		repo:   repo,
		logger: logger,
		clock:  time.Now,
	}
}

type statsStore struct {
	repo   repository.StatsRepository
	logger logrus.FieldLogger
	clock  func() time.Time

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

func (s *statsStore) Load(ctx context.Context, identity string) (*entity.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, entity.NormalizeIdentity(identity))
}

func (s *statsStore) Save(ctx context.Context, identity string, stats *entity.UserStats) error {
	if stats == nil {
		return errors.New("stats required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, entity.NormalizeIdentity(identity), stats)
}

func (s *statsStore) Update(ctx context.Context, identity string, fn func(*entity.UserStats) error) (*entity.UserStats, error) {
	identity = entity.NormalizeIdentity(identity)

	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.loadLocked(ctx, identity)
	if err != nil {
		return nil, err
	}
	if err := fn(stats); err != nil {
		return nil, err
	}
	if err := s.saveLocked(ctx, identity, stats); err != nil {
		return nil, err
	}
	return stats.Clone(), nil
}

func (s *statsStore) loadLocked(ctx context.Context, identity string) (*entity.UserStats, error) {
	now := s.clock()
	if identity == "" {
		return entity.NewUserStats(now), nil
	}

	stats, err := s.repo.Find(ctx, identity)
	switch {
	case err == nil:
		return stats, nil
	case errors.Is(err, entity.ErrCorruptRecord):
		s.logger.WithError(err).WithField("identity", identity).Warn("discarding corrupt stats record")
	case errors.Is(err, entity.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("load stats: %w", err)
	}

	stats = entity.NewUserStats(now)
	if err := s.repo.Save(ctx, identity, stats); err != nil {
		return nil, fmt.Errorf("create stats: %w", err)
	}
	return stats, nil
}

func (s *statsStore) saveLocked(ctx context.Context, identity string, stats *entity.UserStats) error {
	if identity == "" {
		return nil
	}
	if err := s.repo.Save(ctx, identity, stats); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}
