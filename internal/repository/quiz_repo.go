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

type QuizRepo struct {
	pool *pgxpool.Pool
}

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{pool: pool}
}

const quizSelect = `SELECT q.id, q.title, q.description, q.time_limit, q.difficulty, q.category, q.is_published,
		q.created_by, q.created_at, q.updated_at, u.id, u.display_name, u.email`

func scanQuizInto(q *models.Quiz, dest ...any) []any {
	creator := &models.UserRef{}
	q.Creator = creator
	return append([]any{
		&q.ID, &q.Title, &q.Description, &q.TimeLimit, &q.Difficulty, &q.Category, &q.IsPublished,
		&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt, &creator.ID, &creator.DisplayName, &creator.Email,
	}, dest...)
}

func (r *QuizRepo) List(ctx context.Context, f models.QuizFilter) ([]*models.QuizSummary, error) {
	var (
		where []string
		args  []any
	)
	if f.PublishedOnly {
		where = append(where, "q.is_published = TRUE")
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("q.category = $%d", len(args)))
	}
	if f.Difficulty != "" {
		args = append(args, f.Difficulty)
		where = append(where, fmt.Sprintf("q.difficulty = $%d", len(args)))
	}

	query := quizSelect + `,
		(SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = q.id),
		(SELECT COUNT(*) FROM submissions s WHERE s.quiz_id = q.id)
		FROM quizzes q JOIN users u ON u.id = q.created_by`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY q.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.QuizSummary, error) {
		s := &models.QuizSummary{}
		if err := row.Scan(scanQuizInto(&s.Quiz, &s.QuestionCount, &s.SubmissionCount)...); err != nil {
			return nil, err
		}
		return s, nil
	})
}

func (r *QuizRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	q := &models.Quiz{}
	query := quizSelect + ` FROM quizzes q JOIN users u ON u.id = q.created_by WHERE q.id = $1`
	if err := r.pool.QueryRow(ctx, query, id).Scan(scanQuizInto(q)...); err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuestions returns the quiz's questions ordered by position.
func (r *QuizRepo) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question, options, correct_answer, explanation, points, position
		 FROM questions WHERE quiz_id = $1 ORDER BY position ASC`, quizID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Question, error) {
		var q models.Question
		err := row.Scan(&q.ID, &q.QuizID, &q.Question, &q.Options, &q.CorrectAnswer, &q.Explanation, &q.Points, &q.Order)
		return q, err
	})
}

func (r *QuizRepo) CountSubmissions(ctx context.Context, quizID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions WHERE quiz_id = $1`, quizID).Scan(&n)
	return n, err
}

// Create inserts the quiz and its questions in one transaction. IDs are
// assigned to quiz and questions in place.
func (r *QuizRepo) Create(ctx context.Context, quiz *models.Quiz, questions []models.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	quiz.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (id, title, description, time_limit, difficulty, category, is_published, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at, updated_at`,
		quiz.ID, quiz.Title, quiz.Description, quiz.TimeLimit, quiz.Difficulty, quiz.Category, quiz.IsPublished, quiz.CreatedBy,
	).Scan(&quiz.CreatedAt, &quiz.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	if err := insertQuestions(ctx, tx, quiz.ID, questions); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update applies the patch. When patch.Questions is non-nil the existing
// question set is deleted and replaced inside the same transaction, so a
// failure leaves the previous questions intact.
func (r *QuizRepo) Update(ctx context.Context, id uuid.UUID, patch models.QuizPatch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE quizzes SET
			title        = COALESCE($2, title),
			description  = COALESCE($3, description),
			time_limit   = COALESCE($4, time_limit),
			difficulty   = COALESCE($5, difficulty),
			category     = COALESCE($6, category),
			is_published = COALESCE($7, is_published),
			updated_at   = NOW()
		 WHERE id = $1`,
		id, patch.Title, patch.Description, patch.TimeLimit, patch.Difficulty, patch.Category, patch.IsPublished,
	)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if patch.Questions != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, id); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if err := insertQuestions(ctx, tx, id, patch.Questions); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *QuizRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM quizzes WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func insertQuestions(ctx context.Context, tx pgx.Tx, quizID uuid.UUID, questions []models.Question) error {
	batch := &pgx.Batch{}
	for i := range questions {
		q := &questions[i]
		q.ID = uuid.New()
		q.QuizID = quizID
		batch.Queue(
			`INSERT INTO questions (id, quiz_id, question, options, correct_answer, explanation, points, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			q.ID, q.QuizID, q.Question, q.Options, q.CorrectAnswer, q.Explanation, q.Points, q.Order,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range questions {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}
	return br.Close()
}
