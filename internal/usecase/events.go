package usecase

import (
	"context"

	"github.com/eslsoft/neurostudy/internal/entity"
)

// EventPublisher receives gamification events after they are persisted.
// Publishing is fire-and-forget; implementations must not block the caller for long.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.GamificationEvent)
}

// NopPublisher drops every event.
func NopPublisher() EventPublisher { return nopPublisher{} }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, entity.GamificationEvent) {}
