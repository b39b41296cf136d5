package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"quizhub-backend/internal/models"
)

type quizReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.Question, error)
}

type submissionStore interface {
	Create(ctx context.Context, s *models.Submission) error
	ListByUser(ctx context.Context, userID uuid.UUID, quizID *uuid.UUID) ([]*models.Submission, error)
}

// SubmissionObserver is told about every accepted submission.
type SubmissionObserver interface {
	ObserveSubmission(quiz *models.Quiz, score, totalPoints int)
}

// SubmissionService grades answer vectors against the stored questions and
// records the result. Client-side scores are never consulted.
type SubmissionService struct {
	quizzes     quizReader
	submissions submissionStore
	events      EventPublisher
	observer    SubmissionObserver
}

func NewSubmissionService(quizzes quizReader, submissions submissionStore, events EventPublisher, observer SubmissionObserver) *SubmissionService {
	return &SubmissionService{
		quizzes:     quizzes,
		submissions: submissions,
		events:      events,
		observer:    observer,
	}
}

func (s *SubmissionService) Submit(ctx context.Context, caller *models.Principal, req models.SubmitRequest) (*models.Submission, error) {
	in, err := validateSubmit(req)
	if err != nil {
		return nil, err
	}

	quiz, err := s.quizzes.GetByID(ctx, in.QuizID)
	if err != nil {
		return nil, notFound(err, "Quiz not found")
	}
	if !quiz.IsPublished {
		return nil, &UnavailableError{Message: "Quiz is not available for submissions"}
	}

	questions, err := s.quizzes.ListQuestions(ctx, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	answers := alignAnswers(req.Answers, questions)
	score, total := Grade(questions, answers)

	quizID := quiz.ID
	sub := &models.Submission{
		UserID:      caller.ID,
		QuizID:      &quizID,
		Answers:     answers,
		Score:       score,
		TotalPoints: total,
		TimeSpent:   in.TimeSpent,
		StartedAt:   in.StartedAt,
		Quiz: &models.SubmissionQuiz{
			ID:         &quizID,
			Title:      quiz.Title,
			Category:   quiz.Category,
			Difficulty: quiz.Difficulty,
		},
	}

	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	if s.observer != nil {
		s.observer.ObserveSubmission(quiz, score, total)
	}
	publish(ctx, s.events, models.EventSubmissionCreated, map[string]any{
		"submissionId": sub.ID,
		"quizId":       quizID,
		"quizTitle":    quiz.Title,
		"userId":       caller.ID,
		"score":        score,
		"totalPoints":  total,
	})

	return sub, nil
}

// ListSubmissions returns the caller's own submissions, newest first.
// quizID may be empty.
func (s *SubmissionService) ListSubmissions(ctx context.Context, caller *models.Principal, quizID string) ([]*models.Submission, error) {
	var filter *uuid.UUID
	if quizID != "" {
		id, err := uuid.Parse(quizID)
		if err != nil {
			return nil, fieldError("quizId", "Invalid quiz ID")
		}
		filter = &id
	}

	subs, err := s.submissions.ListByUser(ctx, caller.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if subs == nil {
		subs = []*models.Submission{}
	}
	return subs, nil
}

// validateSubmit checks the request shape. Answers are left unset; they are
// aligned to the question count once the quiz is loaded.
func validateSubmit(req models.SubmitRequest) (*models.SubmissionInput, error) {
	fields := make(map[string]string)

	var quizID uuid.UUID
	if req.QuizID == "" {
		fields["quizId"] = "quizId is required"
	} else if id, err := uuid.Parse(req.QuizID); err != nil {
		fields["quizId"] = "Invalid quiz ID"
	} else {
		quizID = id
	}

	if req.Answers == nil {
		fields["answers"] = "answers must be an array"
	}
	if req.StartedAt == nil {
		fields["startedAt"] = "startedAt is required"
	}

	timeSpent := 0
	if req.TimeSpent != nil {
		timeSpent = *req.TimeSpent
		switch {
		case timeSpent < 0:
			fields["timeSpent"] = "timeSpent must not be negative"
		case timeSpent > math.MaxInt32:
			fields["timeSpent"] = "timeSpent is too large"
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return &models.SubmissionInput{
		QuizID:    quizID,
		TimeSpent: timeSpent,
		StartedAt: req.StartedAt.UTC(),
	}, nil
}
