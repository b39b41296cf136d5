package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"quizhub-backend/internal/handlers"
	"quizhub-backend/internal/metrics"
	"quizhub-backend/internal/middleware"
	"quizhub-backend/internal/websocket"
)

type Deps struct {
	Auth              *middleware.Authenticator
	SubmitLimiter     *middleware.RateLimiter
	Metrics           *metrics.Metrics
	QuizHandler       *handlers.QuizHandler
	SubmissionHandler *handlers.SubmissionHandler
	FeedbackHandler   *handlers.FeedbackHandler
	UserHandler       *handlers.UserHandler
	Hub               *websocket.Hub
	FrontendURL       string
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(d.FrontendURL))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	limit := func(h http.HandlerFunc) http.Handler {
		if d.SubmitLimiter == nil {
			return h
		}
		return d.SubmitLimiter.Middleware(h)
	}

	r.Route("/api", func(r chi.Router) {

		// ──── Users ────
		r.With(d.Auth.Identify).Post("/users/sync", d.UserHandler.Sync)

		// Everything below needs a registered user.
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Middleware)

			r.Get("/users/me", d.UserHandler.Me)
			r.Put("/users/me", d.UserHandler.UpdateMe)

			// ──── Quiz Catalog ────
			r.Route("/quizzes", func(r chi.Router) {
				r.Get("/", d.QuizHandler.List)
				r.Get("/{id}", d.QuizHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", d.QuizHandler.Create)
					r.Put("/{id}", d.QuizHandler.Update)
					r.Delete("/{id}", d.QuizHandler.Delete)
				})
			})

			// ──── Submissions ────
			r.Route("/submissions", func(r chi.Router) {
				r.Method(http.MethodPost, "/", limit(d.SubmissionHandler.Submit))
				r.Get("/", d.SubmissionHandler.List)
			})

			// ──── Feedback ────
			r.Route("/feedback", func(r chi.Router) {
				r.Method(http.MethodPost, "/", limit(d.FeedbackHandler.Create))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", d.FeedbackHandler.List)
					r.Put("/{id}", d.FeedbackHandler.Update)
					r.Delete("/{id}", d.FeedbackHandler.Delete)
				})
			})
		})

		// ──── Admin live feed ────
		if d.Hub != nil {
			r.Get("/admin/ws", d.Hub.HandleWebSocket)
		}
	})

	return r
}
