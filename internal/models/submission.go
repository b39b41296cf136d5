package models

import (
	"time"

	"github.com/google/uuid"
)

// Unanswered marks a question the caller skipped.
const Unanswered = -1

type Submission struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	QuizID      *uuid.UUID      `json:"quizId"`
	Answers     []int           `json:"answers"`
	Score       int             `json:"score"`
	TotalPoints int             `json:"totalPoints"`
	TimeSpent   int             `json:"timeSpent"` // seconds
	StartedAt   time.Time       `json:"startedAt"`
	SubmittedAt time.Time       `json:"submittedAt"`
	Quiz        *SubmissionQuiz `json:"quiz"`
}

// SubmissionQuiz is the quiz snapshot kept with a submission.
type SubmissionQuiz struct {
	ID         *uuid.UUID `json:"id"`
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

// SubmitRequest is the wire body of POST /submissions. Answers entries may be
// null for unanswered questions.
type SubmitRequest struct {
	QuizID    string     `json:"quizId"`
	Answers   []*int     `json:"answers"`
	TimeSpent *int       `json:"timeSpent"`
	StartedAt *time.Time `json:"startedAt"`
}

// SubmissionInput is a SubmitRequest that passed boundary validation.
type SubmissionInput struct {
	QuizID    uuid.UUID
	Answers   []int
	TimeSpent int
	StartedAt time.Time
}
