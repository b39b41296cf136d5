package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients keeps the live-feed subscription off the pool used for
// commands, where BRPOP from the notification workers can hold connections
// for seconds at a time.
type RedisClients struct {
	// Commands serves feed publishing, the feedback notification queue and
	// the submit rate limiter.
	Commands *redis.Client
	// Feed holds the hub's pattern subscription.
	Feed *redis.Client
}

func NewRedisClients(ctx context.Context, redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	feedOpt := *opt
	clients := &RedisClients{
		Commands: redis.NewClient(opt),
		Feed:     redis.NewClient(&feedOpt),
	}
	clients.Commands.AddHook(logFailures{pool: "commands"})
	clients.Feed.AddHook(logFailures{pool: "feed"})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := clients.Ping(ctx); err != nil {
		clients.Close()
		return nil, err
	}
	return clients, nil
}

// Ping checks both pools.
func (r *RedisClients) Ping(ctx context.Context) error {
	if err := r.Commands.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis (commands): %w", err)
	}
	if err := r.Feed.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis (feed): %w", err)
	}
	return nil
}

func (r *RedisClients) Close() {
	r.Commands.Close()
	r.Feed.Close()
}

// logFailures reports dial errors and failed commands. redis.Nil is a normal
// reply (empty BRPOP, missing key) and is not logged.
type logFailures struct {
	pool string
}

func (h logFailures) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			slog.WarnContext(ctx, "redis: dial failed", "pool", h.pool, "addr", addr, "error", err)
		}
		return conn, err
	}
}

func (h logFailures) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		h.report(ctx, cmd, err)
		return err
	}
}

func (h logFailures) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		for _, cmd := range cmds {
			h.report(ctx, cmd, cmd.Err())
		}
		return err
	}
}

func (h logFailures) report(ctx context.Context, cmd redis.Cmder, err error) {
	if err == nil || errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
		return
	}
	slog.WarnContext(ctx, "redis: command failed", "pool", h.pool, "command", cmd.Name(), "error", err)
}
