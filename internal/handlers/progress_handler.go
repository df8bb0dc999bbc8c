package handlers

import (
	"net/http"

	"linguaclash/internal/service"
)

// ProgressHandler finishes parts and reports stored scores
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

type completePartRequest struct {
	Scores []float64 `json:"scores"`
}

// CompletePart averages three exercise scores posted by the client and
// routes the learner. Used when the scores were collected outside a run.
func (h *ProgressHandler) CompletePart(w http.ResponseWriter, r *http.Request) {
	var req completePartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	for _, s := range req.Scores {
		if s < 0 || s > 100 {
			respondWithError(w, http.StatusBadRequest, "Scores must be between 0 and 100", "", nil)
			return
		}
	}

	outcome, err := h.progressService.CompletePart(r.Context(), userID(r), partRef(r), req.Scores)
	if err != nil {
		respondWithServiceError(w, "Error completing part", err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// Scores returns every stored part average of the signed-in learner
func (h *ProgressHandler) Scores(w http.ResponseWriter, r *http.Request) {
	record, err := h.progressService.Scores(r.Context(), userID(r))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load scores", "Error loading scores", err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}
