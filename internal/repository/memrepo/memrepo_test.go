package memrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"quizhub-backend/internal/models"
	"quizhub-backend/internal/repository"
)

func TestUserRepo_Duplicates(t *testing.T) {
	ctx := context.Background()
	users := New().Users()

	require.NoError(t, users.Create(ctx, &models.User{ExternalID: "a", Email: "a@example.com"}))
	require.ErrorIs(t, users.Create(ctx, &models.User{ExternalID: "b", Email: "A@example.com"}), repository.ErrDuplicate)
	require.ErrorIs(t, users.Create(ctx, &models.User{ExternalID: "a", Email: "other@example.com"}), repository.ErrDuplicate)

	_, err := users.GetByExternalID(ctx, "missing")
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestQuizRepo_DeleteOrphansReferences(t *testing.T) {
	ctx := context.Background()
	st := New()

	user := &models.User{ExternalID: "u", Email: "u@example.com"}
	require.NoError(t, st.Users().Create(ctx, user))

	quiz := &models.Quiz{Title: "T", Difficulty: models.DifficultyEasy, Category: "C", IsPublished: true, CreatedBy: user.ID}
	require.NoError(t, st.Quizzes().Create(ctx, quiz, []models.Question{
		{Question: "Q", Options: []string{"a", "b"}, CorrectAnswer: 1, Points: 1},
	}))

	sub := &models.Submission{
		UserID:    user.ID,
		QuizID:    &quiz.ID,
		Answers:   []int{1},
		StartedAt: time.Now(),
		Quiz:      &models.SubmissionQuiz{Title: quiz.Title, Category: quiz.Category, Difficulty: quiz.Difficulty},
	}
	require.NoError(t, st.Submissions().Create(ctx, sub))

	fb := &models.Feedback{UserID: user.ID, QuizID: &quiz.ID, Message: "m", Type: models.FeedbackType("QUESTION")}
	require.NoError(t, st.Feedback().Create(ctx, fb))

	require.NoError(t, st.Quizzes().Delete(ctx, quiz.ID))
	require.ErrorIs(t, st.Quizzes().Delete(ctx, quiz.ID), pgx.ErrNoRows)

	questions, err := st.Quizzes().ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	require.Empty(t, questions)

	subs, err := st.Submissions().ListByUser(ctx, user.ID, nil)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Nil(t, subs[0].QuizID)
	require.Equal(t, "T", subs[0].Quiz.Title)

	got, err := st.Feedback().GetByID(ctx, fb.ID)
	require.NoError(t, err)
	require.Nil(t, got.QuizID)
	require.Nil(t, got.Quiz)
}

func TestStore_FailWrites(t *testing.T) {
	st := New()
	st.FailWrites = errors.New("disk full")

	err := st.Submissions().Create(context.Background(), &models.Submission{UserID: uuid.New()})
	require.EqualError(t, err, "disk full")
	require.Zero(t, st.Submissions().Len())
}

func TestSubmissionRepo_RejectsInt4Overflow(t *testing.T) {
	st := New()

	err := st.Submissions().Create(context.Background(), &models.Submission{
		UserID:  uuid.New(),
		Answers: []int{3000000000, 1},
		Quiz:    &models.SubmissionQuiz{},
	})
	require.ErrorContains(t, err, "out of range for int4")
	require.Zero(t, st.Submissions().Len())
}
