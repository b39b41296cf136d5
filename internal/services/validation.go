package services

import (
	"fmt"
	"math"
	"strings"

	"quizhub-backend/internal/models"
)

const (
	minOptions       = 2
	defaultPoints    = 1
	maxPoints        = 1000
	maxFeedbackRunes = 5000
)

// parseDifficulty accepts any letter case. An empty string yields def.
func parseDifficulty(raw string, def models.Difficulty) (models.Difficulty, bool) {
	if strings.TrimSpace(raw) == "" {
		return def, def != ""
	}
	d := models.Difficulty(strings.ToUpper(strings.TrimSpace(raw)))
	return d, d.Valid()
}

// buildQuestions validates inputs and returns them as stored questions with
// Order set from the array position. Every problem is reported at once,
// keyed by "questions[i].field".
func buildQuestions(inputs []models.QuestionInput, fields map[string]string) []models.Question {
	if len(inputs) == 0 {
		fields["questions"] = "At least one question is required"
		return nil
	}

	out := make([]models.Question, 0, len(inputs))
	for i, in := range inputs {
		key := func(f string) string { return fmt.Sprintf("questions[%d].%s", i, f) }

		text := strings.TrimSpace(in.Question)
		if text == "" {
			fields[key("question")] = "Question text is required"
		}

		if len(in.Options) < minOptions {
			fields[key("options")] = fmt.Sprintf("At least %d options are required", minOptions)
		}
		for j, opt := range in.Options {
			if strings.TrimSpace(opt) == "" {
				fields[fmt.Sprintf("questions[%d].options[%d]", i, j)] = "Option text is required"
			}
		}

		switch {
		case in.CorrectAnswer == nil:
			fields[key("correctAnswer")] = "Correct answer is required"
		case *in.CorrectAnswer < 0 || *in.CorrectAnswer >= len(in.Options):
			fields[key("correctAnswer")] = fmt.Sprintf("Must be between 0 and %d", max(len(in.Options)-1, 0))
		}

		points := defaultPoints
		if in.Points != nil {
			points = *in.Points
			if points < 1 || points > maxPoints {
				fields[key("points")] = fmt.Sprintf("Points must be between 1 and %d", maxPoints)
			}
		}

		var correct int
		if in.CorrectAnswer != nil {
			correct = *in.CorrectAnswer
		}

		out = append(out, models.Question{
			Question:      text,
			Options:       append([]string(nil), in.Options...),
			CorrectAnswer: correct,
			Explanation:   trimOptional(in.Explanation),
			Points:        points,
			Order:         i,
		})
	}
	return out
}

func requireText(fields map[string]string, name, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		fields[name] = fmt.Sprintf("%s is required", name)
	}
	return v
}

func validTimeLimit(fields map[string]string, tl *int) {
	if tl != nil && (*tl < 1 || *tl > math.MaxInt32) {
		fields["timeLimit"] = "timeLimit must be at least 1 minute"
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
