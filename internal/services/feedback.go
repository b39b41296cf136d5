package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"quizhub-backend/internal/models"
)

type feedbackStore interface {
	Create(ctx context.Context, f *models.Feedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error)
	List(ctx context.Context, filter models.FeedbackFilter) ([]*models.Feedback, error)
	SetRead(ctx context.Context, id uuid.UUID, isRead bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type quizLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
}

// NotificationQueue accepts feedback notifications for asynchronous delivery.
type NotificationQueue interface {
	Enqueue(ctx context.Context, n models.FeedbackNotification) error
}

type FeedbackService struct {
	feedback   feedbackStore
	quizzes    quizLookup
	events     EventPublisher
	queue      NotificationQueue
	adminEmail string
}

func NewFeedbackService(feedback feedbackStore, quizzes quizLookup, events EventPublisher, queue NotificationQueue, adminEmail string) *FeedbackService {
	return &FeedbackService{
		feedback:   feedback,
		quizzes:    quizzes,
		events:     events,
		queue:      queue,
		adminEmail: adminEmail,
	}
}

func (s *FeedbackService) Create(ctx context.Context, caller *models.Principal, req models.CreateFeedbackRequest) (*models.Feedback, error) {
	fields := make(map[string]string)

	message := strings.TrimSpace(req.Message)
	switch n := utf8.RuneCountInString(message); {
	case n == 0:
		fields["message"] = "message is required"
	case n > maxFeedbackRunes:
		fields["message"] = fmt.Sprintf("message must be at most %d characters", maxFeedbackRunes)
	}

	fbType := models.FeedbackType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if !fbType.Valid() {
		fields["type"] = "Must be one of QUESTION, SUGGESTION, BUG_REPORT"
	}

	var quizID *uuid.UUID
	if req.QuizID != nil && *req.QuizID != "" {
		id, err := uuid.Parse(*req.QuizID)
		if err != nil {
			fields["quizId"] = "Invalid quiz ID"
		} else {
			quizID = &id
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var quiz *models.Quiz
	if quizID != nil {
		q, err := s.quizzes.GetByID(ctx, *quizID)
		if err != nil {
			return nil, notFound(err, "Quiz not found")
		}
		quiz = q
	}

	f := &models.Feedback{
		UserID:  caller.ID,
		QuizID:  quizID,
		Message: message,
		Type:    fbType,
	}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	f.User = &models.UserRef{ID: caller.ID, DisplayName: caller.DisplayName, Email: caller.Email}
	if quiz != nil {
		f.Quiz = &models.FeedbackQuiz{ID: quiz.ID, Title: quiz.Title}
	}

	publish(ctx, s.events, models.EventFeedbackCreated, f)
	s.notify(ctx, f)

	return f, nil
}

func (s *FeedbackService) notify(ctx context.Context, f *models.Feedback) {
	if s.queue == nil || s.adminEmail == "" {
		return
	}

	n := models.FeedbackNotification{
		FeedbackID: f.ID,
		Recipient:  s.adminEmail,
		From:       f.User.Email,
		Type:       f.Type,
		Message:    f.Message,
	}
	if f.Quiz != nil {
		n.QuizTitle = f.Quiz.Title
	}

	if err := s.queue.Enqueue(ctx, n); err != nil {
		slog.WarnContext(ctx, "feedback: enqueue notification failed", "feedback_id", f.ID, "error", err)
	}
}

// List returns feedback newest first. An empty or "all" value disables a filter.
func (s *FeedbackService) List(ctx context.Context, typeFilter, isReadFilter string) ([]*models.Feedback, error) {
	var filter models.FeedbackFilter

	if t := strings.TrimSpace(typeFilter); t != "" && !strings.EqualFold(t, "all") {
		filter.Type = models.FeedbackType(strings.ToUpper(t))
		// No stored row can carry an unknown type.
		if !filter.Type.Valid() {
			return []*models.Feedback{}, nil
		}
	}

	if r := strings.TrimSpace(isReadFilter); r != "" && !strings.EqualFold(r, "all") {
		b, err := strconv.ParseBool(r)
		if err != nil {
			return nil, fieldError("isRead", "Must be true, false or all")
		}
		filter.IsRead = &b
	}

	items, err := s.feedback.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	if items == nil {
		items = []*models.Feedback{}
	}
	return items, nil
}

func (s *FeedbackService) Update(ctx context.Context, id uuid.UUID, req models.UpdateFeedbackRequest) (*models.Feedback, error) {
	if req.IsRead == nil {
		return nil, fieldError("isRead", "isRead is required")
	}

	if err := s.feedback.SetRead(ctx, id, *req.IsRead); err != nil {
		return nil, notFound(err, "Feedback not found")
	}

	f, err := s.feedback.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Feedback not found")
	}
	return f, nil
}

func (s *FeedbackService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.feedback.Delete(ctx, id); err != nil {
		return notFound(err, "Feedback not found")
	}
	return nil
}
