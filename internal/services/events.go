package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quizhub-backend/internal/models"
)

// EventPublisher fans domain events out to the admin live feed. Publishing is
// best effort: a failure is logged and never fails the request that caused it.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(redisClient *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: redisClient}
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(models.WSMessage{Type: eventType, Payload: payload})
	if err != nil {
		slog.ErrorContext(ctx, "events: marshal failed", "type", eventType, "error", err)
		return
	}
	if err := p.redis.Publish(ctx, models.AdminEventsChannel, data).Err(); err != nil {
		slog.WarnContext(ctx, "events: publish failed", "type", eventType, "error", err)
	}
}

// FeedbackQueue enqueues notification jobs for the worker pool.
type FeedbackQueue struct {
	redis *redis.Client
}

func NewFeedbackQueue(redisClient *redis.Client) *FeedbackQueue {
	return &FeedbackQueue{redis: redisClient}
}

func (q *FeedbackQueue) Enqueue(ctx context.Context, n models.FeedbackNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	job := models.Job{
		ID:        uuid.New(),
		Type:      models.JobTypeFeedbackNotification,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	if err := q.redis.RPush(ctx, models.FeedbackNotificationQueue, data).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return nil
}

func publish(ctx context.Context, p EventPublisher, eventType string, payload any) {
	if p != nil {
		p.Publish(ctx, eventType, payload)
	}
}
