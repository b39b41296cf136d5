package handlers

import (
	"net/http"

	"quizhub-backend/internal/middleware"
	"quizhub-backend/internal/models"
	"quizhub-backend/internal/services"
)

type QuizHandler struct {
	quizzes *services.QuizService
}

func NewQuizHandler(quizzes *services.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quizzes, err := h.quizzes.ListQuizzes(r.Context(), middleware.GetPrincipal(r.Context()), q.Get("category"), q.Get("difficulty"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Quiz not found")
	if !ok {
		return
	}

	quiz, err := h.quizzes.GetQuiz(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.quizzes.CreateQuiz(r.Context(), middleware.GetPrincipal(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Quiz not found")
	if !ok {
		return
	}

	var req models.UpdateQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.quizzes.UpdateQuiz(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Quiz not found")
	if !ok {
		return
	}

	if err := h.quizzes.DeleteQuiz(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz deleted"})
}
