// Command seed loads sample users, quizzes, a submission and feedback into an
// empty database. Running it again refreshes the users and leaves existing
// quizzes alone.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"quizhub-backend/internal/config"
	"quizhub-backend/internal/database"
	"quizhub-backend/internal/middleware"
	"quizhub-backend/internal/models"
	"quizhub-backend/internal/repository"
	"quizhub-backend/internal/services"
	"quizhub-backend/migrations"
)

var (
	adminIdentity = models.Identity{Subject: "admin-seed-uid", Email: "admin@example.com", Name: "Admin User"}
	userIdentity  = models.Identity{Subject: "user-seed-uid", Email: "user@example.com", Name: "John Doe"}
)

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.Files); err != nil {
		return err
	}

	quizRepo := repository.NewQuizRepo(pool)
	users := services.NewUserService(repository.NewUserRepo(pool), cfg.AdminEmail)
	quizzes := services.NewQuizService(quizRepo, nil)
	submissions := services.NewSubmissionService(quizRepo, repository.NewSubmissionRepo(pool), nil, nil)
	feedback := services.NewFeedbackService(repository.NewFeedbackRepo(pool), quizRepo, nil, nil, "")

	admin, _, err := users.Sync(ctx, &adminIdentity, models.SyncUserRequest{})
	if err != nil {
		return fmt.Errorf("sync admin: %w", err)
	}
	user, _, err := users.Sync(ctx, &userIdentity, models.SyncUserRequest{})
	if err != nil {
		return fmt.Errorf("sync user: %w", err)
	}
	if admin.Role != models.RoleAdmin {
		slog.Warn("seed admin did not get the ADMIN role; ADMIN_EMAIL differs from the seed email", "email", admin.Email)
	}

	existing, err := quizzes.ListQuizzes(ctx, admin.Principal(), "", "")
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		var jsQuiz *models.QuizDetail
		for i, req := range sampleQuizzes() {
			q, err := quizzes.CreateQuiz(ctx, admin.Principal(), req)
			if err != nil {
				return fmt.Errorf("create quiz %q: %w", req.Title, err)
			}
			if i == 0 {
				jsQuiz = q
			}
		}

		startedAt := time.Now().Add(-10 * time.Minute)
		timeSpent := 600
		if _, err := submissions.Submit(ctx, user.Principal(), models.SubmitRequest{
			QuizID:    jsQuiz.ID.String(),
			Answers:   ints(0, 2, 1, 0, 2),
			TimeSpent: &timeSpent,
			StartedAt: &startedAt,
		}); err != nil {
			return fmt.Errorf("create submission: %w", err)
		}

		quizID := jsQuiz.ID.String()
		for _, req := range []models.CreateFeedbackRequest{
			{Message: "Great quiz! Could you add more advanced JavaScript questions?", Type: "SUGGESTION", QuizID: &quizID},
			{Message: "The timer seems to be running too fast on mobile devices.", Type: "BUG_REPORT"},
		} {
			if _, err := feedback.Create(ctx, user.Principal(), req); err != nil {
				return fmt.Errorf("create feedback: %w", err)
			}
		}
		slog.Info("seeded quizzes", "count", len(sampleQuizzes()))
	} else {
		slog.Info("quizzes already present, skipping", "count", len(existing))
	}

	slog.Info("admin user", "email", admin.Email)
	slog.Info("regular user", "email", user.Email)

	if cfg.AuthProvider == config.AuthProviderJWT {
		jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
		for _, id := range []models.Identity{adminIdentity, userIdentity} {
			token, err := jwtAuth.IssueToken(id)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", id.Email, token)
		}
	}
	return nil
}

func ints(vals ...int) []*int {
	out := make([]*int, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out
}

func question(text string, options []string, correct int, explanation string) models.QuestionInput {
	return models.QuestionInput{
		Question:      text,
		Options:       options,
		CorrectAnswer: &correct,
		Explanation:   &explanation,
	}
}

func sampleQuizzes() []models.CreateQuizRequest {
	published := true
	limit := func(m int) *int { return &m }

	return []models.CreateQuizRequest{
		{
			Title:       "JavaScript Fundamentals",
			Description: "Test your knowledge of JavaScript basics including variables, functions, and control structures.",
			TimeLimit:   limit(15),
			Difficulty:  "MEDIUM",
			Category:    "Programming",
			IsPublished: &published,
			Questions: []models.QuestionInput{
				question("What is the correct way to declare a variable in JavaScript?",
					[]string{"var myVar;", "variable myVar;", "v myVar;", "declare myVar;"}, 0,
					"In JavaScript, variables are declared using var, let, or const keywords."),
				question("Which of the following is NOT a JavaScript data type?",
					[]string{"String", "Boolean", "Integer", "Object"}, 2,
					"JavaScript has Number type, not Integer. Integer is not a primitive data type in JavaScript."),
				question("What does the === operator do?",
					[]string{"Assignment", "Equality without type conversion", "Equality with type conversion", "Not equal"}, 1,
					"The === operator checks for strict equality, comparing both value and type without conversion."),
				question("How do you create a function in JavaScript?",
					[]string{"function myFunction() {}", "create myFunction() {}", "def myFunction() {}", "func myFunction() {}"}, 0,
					"Functions in JavaScript are declared using the function keyword."),
				question("What is the result of typeof null?",
					[]string{"null", "undefined", "object", "boolean"}, 2,
					`This is a known quirk in JavaScript. typeof null returns "object" due to a legacy bug.`),
			},
		},
		{
			Title:       "React Basics",
			Description: "Learn the fundamentals of React including components, props, and state management.",
			TimeLimit:   limit(20),
			Difficulty:  "MEDIUM",
			Category:    "Frontend",
			IsPublished: &published,
			Questions: []models.QuestionInput{
				question("What is JSX?",
					[]string{"A JavaScript library", "A syntax extension for JavaScript", "A CSS framework", "A database"}, 1,
					"JSX is a syntax extension for JavaScript that allows you to write HTML-like code in React."),
				question("How do you pass data to a React component?",
					[]string{"Through state", "Through props", "Through context", "Through refs"}, 1,
					"Props are used to pass data from parent components to child components."),
				question("What hook is used to manage state in functional components?",
					[]string{"useEffect", "useState", "useContext", "useReducer"}, 1,
					"useState is the primary hook for managing local state in functional components."),
				question("What is the virtual DOM?",
					[]string{"A real DOM element", "A JavaScript representation of the DOM", "A CSS framework", "A database"}, 1,
					"The virtual DOM is a JavaScript representation of the actual DOM that React uses for efficient updates."),
			},
		},
		{
			Title:       "CSS Styling",
			Description: "Master CSS selectors, properties, and layout techniques for modern web design.",
			TimeLimit:   limit(10),
			Difficulty:  "EASY",
			Category:    "Frontend",
			IsPublished: &published,
			Questions: []models.QuestionInput{
				question("Which CSS property is used to change the text color?",
					[]string{"text-color", "color", "font-color", "text-style"}, 1,
					"The color property is used to set the color of text in CSS."),
				question("What does CSS stand for?",
					[]string{"Computer Style Sheets", "Cascading Style Sheets", "Creative Style Sheets", "Colorful Style Sheets"}, 1,
					"CSS stands for Cascading Style Sheets."),
				question("Which property is used to change the background color?",
					[]string{"bg-color", "background-color", "bgcolor", "background"}, 1,
					"The background-color property sets the background color of an element."),
			},
		},
	}
}
