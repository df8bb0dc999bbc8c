package handlers

import (
	"net/http"

	"linguaclash/internal/service"
)

// DictionaryHandler exposes the learner's saved words
type DictionaryHandler struct {
	dictionaryService *service.DictionaryService
}

// NewDictionaryHandler creates a new dictionary handler
func NewDictionaryHandler(dictionaryService *service.DictionaryService) *DictionaryHandler {
	return &DictionaryHandler{dictionaryService: dictionaryService}
}

type saveWordRequest struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// Dictionary returns all saved words grouped by folder
func (h *DictionaryHandler) Dictionary(w http.ResponseWriter, r *http.Request) {
	entries, err := h.dictionaryService.Dictionary(r.Context(), userID(r))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load dictionary", "Error loading dictionary", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// Folder returns the saved words of one folder
func (h *DictionaryHandler) Folder(w http.ResponseWriter, r *http.Request) {
	entries, err := h.dictionaryService.Folder(r.Context(), userID(r), r.PathValue("folder"))
	if err != nil {
		respondWithServiceError(w, "Error loading dictionary folder", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// SaveWord adds a word to a folder. Guests get a 200 with saved=false.
func (h *DictionaryHandler) SaveWord(w http.ResponseWriter, r *http.Request) {
	var req saveWordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	res, err := h.dictionaryService.SaveWord(r.Context(), userID(r), r.PathValue("folder"), req.Word, req.Definition)
	if err != nil {
		respondWithServiceError(w, "Error saving word", err)
		return
	}

	status := http.StatusOK
	if res.Added {
		status = http.StatusCreated
	}
	respondJSON(w, status, res)
}
