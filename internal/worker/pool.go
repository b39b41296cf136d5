package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"quizhub-backend/internal/models"
)

type mailer interface {
	SendFeedbackNotification(n models.FeedbackNotification) error
}

// Pool drains the feedback notification queue with a fixed number of
// workers. A SETNX lock per job id keeps a job that was pushed twice from
// being delivered twice.
type Pool struct {
	redis       *redis.Client
	mailer      mailer
	workerCount int
	popTimeout  time.Duration
	lockTTL     time.Duration
}

func NewPool(redisClient *redis.Client, m mailer, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		mailer:      m,
		workerCount: workerCount,
		popTimeout:  5 * time.Second,
		lockTTL:     10 * time.Minute,
	}
}

// Run blocks until ctx is cancelled. Each worker notices cancellation after
// its current BLPOP returns.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workerCount; i++ {
		g.Go(func() error {
			p.worker(ctx, i)
			return nil
		})
	}

	slog.Info("worker: started", "workers", p.workerCount, "queue", models.FeedbackNotificationQueue)
	return g.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			slog.Info("worker: shutting down", "worker", id)
			return
		}

		result, err := p.redis.BLPop(ctx, p.popTimeout, models.FeedbackNotificationQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				slog.Warn("worker: blpop failed", "worker", id, "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		if err := p.process(ctx, result[1]); err != nil {
			slog.Error("worker: job failed", "worker", id, "error", err)
		}
	}
}

func (p *Pool) process(ctx context.Context, raw string) error {
	var job models.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return fmt.Errorf("parse job: %w", err)
	}

	lockKey := "job_lock:" + job.ID.String()
	locked, err := p.redis.SetNX(ctx, lockKey, "1", p.lockTTL).Result()
	if err != nil {
		return fmt.Errorf("lock job %s: %w", job.ID, err)
	}
	if !locked {
		return nil // Another worker has this job
	}

	switch job.Type {
	case models.JobTypeFeedbackNotification:
		var n models.FeedbackNotification
		if err := json.Unmarshal(job.Payload, &n); err != nil {
			return fmt.Errorf("parse payload of job %s: %w", job.ID, err)
		}
		if err := p.mailer.SendFeedbackNotification(n); err != nil {
			return fmt.Errorf("send notification for feedback %s: %w", n.FeedbackID, err)
		}
		slog.Info("worker: notification sent", "job_id", job.ID, "feedback_id", n.FeedbackID)
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
	return nil
}
