package models

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackType string

const (
	FeedbackQuestion   FeedbackType = "QUESTION"
	FeedbackSuggestion FeedbackType = "SUGGESTION"
	FeedbackBugReport  FeedbackType = "BUG_REPORT"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackQuestion, FeedbackSuggestion, FeedbackBugReport:
		return true
	}
	return false
}

type Feedback struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"userId"`
	QuizID    *uuid.UUID    `json:"quizId"`
	Message   string        `json:"message"`
	Type      FeedbackType  `json:"type"`
	IsRead    bool          `json:"isRead"`
	CreatedAt time.Time     `json:"createdAt"`
	User      *UserRef      `json:"user,omitempty"`
	Quiz      *FeedbackQuiz `json:"quiz"`
}

type FeedbackQuiz struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type FeedbackFilter struct {
	Type   FeedbackType
	IsRead *bool
}

type CreateFeedbackRequest struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	QuizID  *string `json:"quizId"`
}

type UpdateFeedbackRequest struct {
	IsRead *bool `json:"isRead"`
}
