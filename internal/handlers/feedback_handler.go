package handlers

import (
	"net/http"

	"linguaclash/internal/service"
)

// FeedbackHandler accepts ratings from learners and guests
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

// Submit stores a rating
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	fb, err := h.feedbackService.Submit(r.Context(), GetUserFromContext(r.Context()), req.Rating, req.Message)
	if err != nil {
		respondWithServiceError(w, "Error saving feedback", err)
		return
	}
	respondJSON(w, http.StatusCreated, fb)
}
