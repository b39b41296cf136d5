package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizhub-backend/internal/models"
)

type FeedbackRepo struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepo(pool *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{pool: pool}
}

const feedbackSelect = `SELECT f.id, f.user_id, f.quiz_id, f.message, f.type, f.is_read, f.created_at,
		u.display_name, u.email, q.title
	FROM feedback f
	JOIN users u ON u.id = f.user_id
	LEFT JOIN quizzes q ON q.id = f.quiz_id`

func scanFeedback(row pgx.Row) (*models.Feedback, error) {
	f := &models.Feedback{User: &models.UserRef{}}
	var quizTitle *string
	err := row.Scan(&f.ID, &f.UserID, &f.QuizID, &f.Message, &f.Type, &f.IsRead, &f.CreatedAt,
		&f.User.DisplayName, &f.User.Email, &quizTitle)
	if err != nil {
		return nil, err
	}
	f.User.ID = f.UserID
	if f.QuizID != nil && quizTitle != nil {
		f.Quiz = &models.FeedbackQuiz{ID: *f.QuizID, Title: *quizTitle}
	}
	return f, nil
}

func (r *FeedbackRepo) Create(ctx context.Context, f *models.Feedback) error {
	f.ID = uuid.New()
	return r.pool.QueryRow(ctx,
		`INSERT INTO feedback (id, user_id, quiz_id, message, type) VALUES ($1, $2, $3, $4, $5)
		 RETURNING is_read, created_at`,
		f.ID, f.UserID, f.QuizID, f.Message, f.Type,
	).Scan(&f.IsRead, &f.CreatedAt)
}

func (r *FeedbackRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	return scanFeedback(r.pool.QueryRow(ctx, feedbackSelect+` WHERE f.id = $1`, id))
}

func (r *FeedbackRepo) List(ctx context.Context, filter models.FeedbackFilter) ([]*models.Feedback, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("f.type = $%d", len(args)))
	}
	if filter.IsRead != nil {
		args = append(args, *filter.IsRead)
		where = append(where, fmt.Sprintf("f.is_read = $%d", len(args)))
	}

	query := feedbackSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY f.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Feedback, error) {
		return scanFeedback(row)
	})
}

func (r *FeedbackRepo) SetRead(ctx context.Context, id uuid.UUID, isRead bool) error {
	tag, err := r.pool.Exec(ctx, "UPDATE feedback SET is_read = $1 WHERE id = $2", isRead, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *FeedbackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM feedback WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
