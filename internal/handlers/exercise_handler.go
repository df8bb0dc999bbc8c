package handlers

import (
	"net/http"
	"strconv"

	"linguaclash/internal/service"
)

// ExerciseHandler drives exercise sessions
type ExerciseHandler struct {
	exerciseService *service.ExerciseService
}

// NewExerciseHandler creates a new exercise handler
func NewExerciseHandler(exerciseService *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

type answerRequest struct {
	ItemID string `json:"item_id"`
	Value  string `json:"value"`
}

// GetRun returns the scores collected so far in a run
func (h *ExerciseHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.exerciseService.Run(userID(r), r.PathValue("runId"))
	if err != nil {
		respondWithServiceError(w, "Error loading run", err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

// StartExercise begins one exercise of a run
func (h *ExerciseHandler) StartExercise(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid exercise index", "", nil)
		return
	}

	session, err := h.exerciseService.StartExercise(userID(r), r.PathValue("runId"), index)
	if err != nil {
		respondWithServiceError(w, "Error starting exercise", err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

// GetSession returns the current state of a session
func (h *ExerciseHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.exerciseService.View(userID(r), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Error loading session", err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Submit grades an answer immediately
func (h *ExerciseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	h.respond(w, "Error submitting answer")(h.exerciseService.Submit(r.Context(), userID(r), r.PathValue("id"), req.ItemID, req.Value))
}

// Target selects the item the next choice answers
func (h *ExerciseHandler) Target(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	h.respond(w, "Error selecting item")(h.exerciseService.Target(r.Context(), userID(r), r.PathValue("id"), req.ItemID))
}

// Choose answers the targeted item with a pool token
func (h *ExerciseHandler) Choose(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	h.respond(w, "Error choosing answer")(h.exerciseService.Choose(r.Context(), userID(r), r.PathValue("id"), req.Value))
}

// Draft stores an answer for the next check
func (h *ExerciseHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	h.respond(w, "Error saving draft")(h.exerciseService.Draft(r.Context(), userID(r), r.PathValue("id"), req.ItemID, req.Value))
}

// Check grades every drafted answer
func (h *ExerciseHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error checking answers")(h.exerciseService.CheckAll(r.Context(), userID(r), r.PathValue("id")))
}

func (h *ExerciseHandler) respond(w http.ResponseWriter, logMsg string) func(*service.ActionResult, error) {
	return func(res *service.ActionResult, err error) {
		if err != nil {
			respondWithServiceError(w, logMsg, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}
