package models

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Quiz struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TimeLimit   *int       `json:"timeLimit"` // minutes
	Difficulty  Difficulty `json:"difficulty"`
	Category    string     `json:"category"`
	IsPublished bool       `json:"isPublished"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	Creator     *UserRef   `json:"creator,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Question is the authoritative stored form. CorrectAnswer never leaves the
// process through this type; see QuestionView.
type Question struct {
	ID            uuid.UUID `json:"id"`
	QuizID        uuid.UUID `json:"quizId"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer int       `json:"-"`
	Explanation   *string   `json:"explanation"`
	Points        int       `json:"points"`
	Order         int       `json:"order"`
}

// QuestionView is the wire shape of a question. CorrectAnswer is only set for admins.
type QuestionView struct {
	Question
	CorrectAnswer *int `json:"correctAnswer,omitempty"`
}

// QuizSummary is a catalog list entry: aggregates instead of question bodies.
type QuizSummary struct {
	Quiz
	QuestionCount   int `json:"questionCount"`
	SubmissionCount int `json:"submissionCount"`
}

type QuizDetail struct {
	Quiz
	Questions       []QuestionView `json:"questions"`
	SubmissionCount int            `json:"submissionCount"`
}

type QuizFilter struct {
	Category      string
	Difficulty    Difficulty
	PublishedOnly bool
}

type QuestionInput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Explanation   *string  `json:"explanation"`
	Points        *int     `json:"points"`
}

type CreateQuizRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TimeLimit   *int            `json:"timeLimit"`
	Difficulty  string          `json:"difficulty"`
	Category    string          `json:"category"`
	IsPublished *bool           `json:"isPublished"`
	Questions   []QuestionInput `json:"questions"`
}

type UpdateQuizRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	TimeLimit   *int             `json:"timeLimit"`
	Difficulty  *string          `json:"difficulty"`
	Category    *string          `json:"category"`
	IsPublished *bool            `json:"isPublished"`
	Questions   *[]QuestionInput `json:"questions"`
}

// QuizPatch is a validated UpdateQuizRequest. A nil Questions slice leaves the
// question set untouched; a non-nil one replaces it entirely.
type QuizPatch struct {
	Title       *string
	Description *string
	TimeLimit   *int
	Difficulty  *Difficulty
	Category    *string
	IsPublished *bool
	Questions   []Question
}
