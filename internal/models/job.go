package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	JobTypeFeedbackNotification = "feedback-notification"

	// FeedbackNotificationQueue is the Redis list feedback jobs are pushed to.
	FeedbackNotificationQueue = "queue:feedback-notification"

	// AdminEventsChannel is the Redis pub/sub channel feeding the admin live view.
	AdminEventsChannel = "admin_events"
)

// Job is a unit of background work pushed onto a Redis list.
type Job struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type FeedbackNotification struct {
	FeedbackID uuid.UUID    `json:"feedback_id"`
	Recipient  string       `json:"recipient"`
	From       string       `json:"from"`
	Type       FeedbackType `json:"type"`
	QuizTitle  string       `json:"quiz_title,omitempty"`
	Message    string       `json:"message"`
}

// Admin live-feed event types
const (
	EventSubmissionCreated = "submission.created"
	EventFeedbackCreated   = "feedback.created"
	EventQuizChanged       = "quiz.changed"
)

// WSMessage is the envelope written to admin WebSocket connections.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type QuizChangedEvent struct {
	QuizID uuid.UUID `json:"quizId"`
	Action string    `json:"action"` // "created" | "updated" | "deleted"
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
