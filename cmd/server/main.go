package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"quizhub-backend/internal/config"
	"quizhub-backend/internal/database"
	"quizhub-backend/internal/handlers"
	"quizhub-backend/internal/metrics"
	"quizhub-backend/internal/middleware"
	"quizhub-backend/internal/repository"
	"quizhub-backend/internal/router"
	"quizhub-backend/internal/services"
	"quizhub-backend/internal/websocket"
	"quizhub-backend/internal/worker"
	"quizhub-backend/migrations"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	setupLogger(cfg)
	slog.Info("starting quizhub backend", "env", cfg.Env, "auth_provider", cfg.AuthProvider)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown completed")
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

func run(ctx context.Context, cfg *config.Config) error {
	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClients.Close()
	slog.Info("redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(ctx, pool, migrations.Files); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// ──── Repositories ────
	userRepo := repository.NewUserRepo(pool)
	quizRepo := repository.NewQuizRepo(pool)
	submissionRepo := repository.NewSubmissionRepo(pool)
	feedbackRepo := repository.NewFeedbackRepo(pool)

	// ──── Services ────
	m := metrics.New()
	publisher := services.NewRedisPublisher(redisClients.Commands)
	feedbackQueue := services.NewFeedbackQueue(redisClients.Commands)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)

	quizService := services.NewQuizService(quizRepo, publisher)
	submissionService := services.NewSubmissionService(quizRepo, submissionRepo, publisher, m)
	feedbackService := services.NewFeedbackService(feedbackRepo, quizRepo, publisher, feedbackQueue, cfg.AdminEmail)
	userService := services.NewUserService(userRepo, cfg.AdminEmail)

	var verifier middleware.TokenVerifier
	switch cfg.AuthProvider {
	case config.AuthProviderGoogle:
		verifier = services.NewGoogleVerifier(cfg.GoogleClientID)
	default:
		verifier = middleware.NewJWTAuth(cfg.JWTSecret)
	}
	auth := middleware.NewAuthenticator(verifier, userRepo)

	// ──── WebSocket Hub & Worker Pool ────
	hub := websocket.NewHub(redisClients.Feed, auth)
	workerPool := worker.NewPool(redisClients.Commands, emailService, cfg.WorkerCount)

	// ──── HTTP Server ────
	handler := router.New(router.Deps{
		Auth:              auth,
		SubmitLimiter:     middleware.NewRateLimiter(redisClients.Commands, "submit", cfg.SubmitRateLimit, time.Minute),
		Metrics:           m,
		QuizHandler:       handlers.NewQuizHandler(quizService),
		SubmissionHandler: handlers.NewSubmissionHandler(submissionService),
		FeedbackHandler:   handlers.NewFeedbackHandler(feedbackService),
		UserHandler:       handlers.NewUserHandler(userService),
		Hub:               hub,
		FrontendURL:       cfg.FrontendURL,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(ctx)
	})

	g.Go(func() error {
		return workerPool.Run(ctx)
	})

	g.Go(func() error {
		slog.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
