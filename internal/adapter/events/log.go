// Package events delivers gamification events to logs and websocket subscribers.
package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/usecase"
)

// LogPublisher writes every event as a structured log line.
type LogPublisher struct {
	logger logrus.FieldLogger
}

// NewLogPublisher returns a publisher that logs at info level.
func NewLogPublisher(logger logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event entity.GamificationEvent) {
	fields := logrus.Fields{
		"event":    event.Type,
		"identity": event.Identity,
	}
	if event.AchievementID != "" {
		fields["achievement"] = event.AchievementID
	}
	if event.Points != 0 {
		fields["points"] = event.Points
	}
	if event.NewXP != 0 {
		fields["new_xp"] = event.NewXP
	}
	p.logger.WithFields(fields).Info("gamification event")
}

// Multi fans an event out to every publisher in order.
type Multi []usecase.EventPublisher

func (m Multi) Publish(ctx context.Context, event entity.GamificationEvent) {
	for _, p := range m {
		p.Publish(ctx, event)
	}
}

var (
	_ usecase.EventPublisher = (*LogPublisher)(nil)
	_ usecase.EventPublisher = Multi(nil)
)
