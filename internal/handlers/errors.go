package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"linguaclash/internal/lessons"
	"linguaclash/internal/scoring"
	"linguaclash/internal/security"
	"linguaclash/internal/service"
	"linguaclash/internal/validation"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorBody{Error: userMsg})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondWithServiceError maps domain errors to statuses. Anything unknown is
// logged and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: verr.Message, Field: verr.Field})

	case errors.Is(err, lessons.ErrFolderNotFound),
		errors.Is(err, lessons.ErrPartNotFound),
		errors.Is(err, service.ErrRunNotFound),
		errors.Is(err, service.ErrSessionGone),
		errors.Is(err, service.ErrUnknownExercise),
		errors.Is(err, scoring.ErrUnknownItem):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)

	case errors.Is(err, service.ErrExerciseLocked),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, scoring.ErrItemResolved),
		errors.Is(err, scoring.ErrTokenUnavailable),
		errors.Is(err, scoring.ErrSessionComplete),
		errors.Is(err, scoring.ErrDeferredGrading),
		errors.Is(err, scoring.ErrInstantGrading):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)

	case errors.Is(err, scoring.ErrIncompleteScores),
		errors.Is(err, scoring.ErrMissingDraft):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, security.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)

	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
