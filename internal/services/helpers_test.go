package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"quizhub-backend/internal/models"
	"quizhub-backend/internal/repository/memrepo"
)

type recordedEvent struct {
	Type    string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingQueue struct {
	jobs []models.FeedbackNotification
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, n models.FeedbackNotification) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, n)
	return nil
}

func newUser(t *testing.T, st *memrepo.Store, email string, role models.Role) *models.Principal {
	t.Helper()
	u := &models.User{ExternalID: "ext-" + email, Email: email, DisplayName: email, Role: role}
	require.NoError(t, st.Users().Create(context.Background(), u))
	return u.Principal()
}

func ptr[T any](v T) *T { return &v }

// twoQuestionQuiz builds the quiz used throughout the grading examples:
// points [1,1], correct answers [0,1].
func twoQuestionQuiz(published bool) models.CreateQuizRequest {
	return models.CreateQuizRequest{
		Title:       "Basics",
		Description: "Two questions",
		Difficulty:  "easy",
		Category:    "General",
		IsPublished: ptr(published),
		Questions: []models.QuestionInput{
			{Question: "Q1", Options: []string{"a", "b"}, CorrectAnswer: ptr(0)},
			{Question: "Q2", Options: []string{"a", "b", "c"}, CorrectAnswer: ptr(1)},
		},
	}
}
