package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/repository"
)

type quizSessionRepository struct {
	kv repository.KeyValueStore
}

// NewQuizSessionRepository constructs the checkpoint repository.
func NewQuizSessionRepository(kv repository.KeyValueStore) repository.QuizSessionRepository {
	return &quizSessionRepository{kv: kv}
}

func (r *quizSessionRepository) Get(ctx context.Context) (*entity.QuizSession, error) {
	var session entity.QuizSession
	err := getJSON(ctx, r.kv, sessionKey, &session)
	switch {
	case err == nil:
		return &session, nil
	case errors.Is(err, entity.ErrRecordNotFound):
		return nil, entity.ErrNoQuizSession
	case errors.Is(err, entity.ErrCorruptRecord):
		// An unreadable checkpoint is dropped, the same way a fresh login would find none.
		if derr := r.kv.Delete(ctx, sessionKey); derr != nil {
			return nil, fmt.Errorf("drop corrupt quiz session: %w", derr)
		}
		return nil, entity.ErrNoQuizSession
	default:
		return nil, err
	}
}

func (r *quizSessionRepository) Save(ctx context.Context, session *entity.QuizSession) error {
	if session == nil {
		return entity.ErrInvalidQuizSession
	}
	return setJSON(ctx, r.kv, sessionKey, session)
}

func (r *quizSessionRepository) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear quiz session: %w", err)
	}
	return nil
}
