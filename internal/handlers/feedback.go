package handlers

import (
	"net/http"

	"quizhub-backend/internal/middleware"
	"quizhub-backend/internal/models"
	"quizhub-backend/internal/services"
)

type FeedbackHandler struct {
	feedback *services.FeedbackService
}

func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	f, err := h.feedback.Create(r.Context(), middleware.GetPrincipal(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, f)
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.feedback.List(r.Context(), q.Get("type"), q.Get("isRead"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *FeedbackHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Feedback not found")
	if !ok {
		return
	}

	var req models.UpdateFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	f, err := h.feedback.Update(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Feedback not found")
	if !ok {
		return
	}

	if err := h.feedback.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Feedback deleted"})
}
