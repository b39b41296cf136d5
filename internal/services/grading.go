package services

import "quizhub-backend/internal/models"

// Grade scores answers against questions positionally: answers[i] is checked
// against questions[i]. totalPoints always covers every question; a missing,
// negative or out-of-range answer is simply wrong.
func Grade(questions []models.Question, answers []int) (score, totalPoints int) {
	for i, q := range questions {
		totalPoints += q.Points
		if i >= len(answers) {
			continue
		}
		a := answers[i]
		if a < 0 || a >= len(q.Options) {
			continue
		}
		if a == q.CorrectAnswer {
			score += q.Points
		}
	}
	return score, totalPoints
}

// alignAnswers converts the wire answer vector into one entry per question.
// null and any index outside the question's options become models.Unanswered,
// extra entries are dropped and missing ones padded.
func alignAnswers(raw []*int, questions []models.Question) []int {
	out := make([]int, len(questions))
	for i, q := range questions {
		out[i] = models.Unanswered
		if i < len(raw) && raw[i] != nil && *raw[i] >= 0 && *raw[i] < len(q.Options) {
			out[i] = *raw[i]
		}
	}
	return out
}
