package repository

import (
	"context"

	"github.com/eslsoft/neurostudy/internal/entity"
)

// QuizSessionRepository owns the singleton in-progress quiz checkpoint.
type QuizSessionRepository interface {
	// Get returns entity.ErrNoQuizSession when no checkpoint exists.
	Get(ctx context.Context) (*entity.QuizSession, error)
	Save(ctx context.Context, session *entity.QuizSession) error
	Clear(ctx context.Context) error
}
