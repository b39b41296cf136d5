package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizhub-backend/internal/models"
)

// SubmissionRepo has no update or delete path: submissions are immutable.
type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

// Create inserts s and fills in its id and server-assigned submitted_at.
func (r *SubmissionRepo) Create(ctx context.Context, s *models.Submission) error {
	s.ID = uuid.New()
	query := `INSERT INTO submissions (id, user_id, quiz_id, quiz_title, quiz_category, quiz_difficulty,
			answers, score, total_points, time_spent, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING submitted_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.UserID, s.QuizID, s.Quiz.Title, s.Quiz.Category, s.Quiz.Difficulty,
		s.Answers, s.Score, s.TotalPoints, s.TimeSpent, s.StartedAt,
	).Scan(&s.SubmittedAt)
}

// ListByUser returns the user's submissions, newest first, optionally for one quiz.
func (r *SubmissionRepo) ListByUser(ctx context.Context, userID uuid.UUID, quizID *uuid.UUID) ([]*models.Submission, error) {
	query := `SELECT id, user_id, quiz_id, quiz_title, quiz_category, quiz_difficulty,
			answers, score, total_points, time_spent, started_at, submitted_at
		FROM submissions
		WHERE user_id = $1 AND ($2::uuid IS NULL OR quiz_id = $2)
		ORDER BY submitted_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, quizID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Submission, error) {
		s := &models.Submission{Quiz: &models.SubmissionQuiz{}}
		err := row.Scan(&s.ID, &s.UserID, &s.QuizID, &s.Quiz.Title, &s.Quiz.Category, &s.Quiz.Difficulty,
			&s.Answers, &s.Score, &s.TotalPoints, &s.TimeSpent, &s.StartedAt, &s.SubmittedAt)
		if err != nil {
			return nil, err
		}
		s.Quiz.ID = s.QuizID
		return s, nil
	})
}
