package handlers

import (
	"net/http"

	"linguaclash/internal/lessons"
	"linguaclash/internal/models"
	"linguaclash/internal/service"
)

// LessonHandler serves the lesson catalog and starts runs through parts
type LessonHandler struct {
	catalog         *lessons.Catalog
	progressService *service.ProgressService
	exerciseService *service.ExerciseService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(catalog *lessons.Catalog, progressService *service.ProgressService, exerciseService *service.ExerciseService) *LessonHandler {
	return &LessonHandler{
		catalog:         catalog,
		progressService: progressService,
		exerciseService: exerciseService,
	}
}

// PartSummary is a part in the folder list, with the learner's stored
// average when there is one
type PartSummary struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Score *float64 `json:"score,omitempty"`
}

type EpisodeSummary struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Parts []PartSummary `json:"parts"`
}

type FolderSummary struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	VideoURL string           `json:"video_url"`
	Episodes []EpisodeSummary `json:"episodes"`
}

// PartView is one part with its exercises. Answers are never serialized.
type PartView struct {
	*lessons.Part
	Lesson        lessons.Ref `json:"lesson"`
	PreviousScore *float64    `json:"previous_score,omitempty"`
}

func partRef(r *http.Request) lessons.Ref {
	return lessons.Ref{
		Folder:  r.PathValue("folder"),
		Episode: r.PathValue("episode"),
		Part:    r.PathValue("part"),
	}
}

// ListFolders returns the catalog. Signed-in learners also get their scores.
func (h *LessonHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	var record models.ScoreRecord
	if id := userID(r); id != 0 {
		var err error
		record, err = h.progressService.Scores(r.Context(), id)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to load scores", "Error loading scores for folder list", err)
			return
		}
	}

	folders := make([]FolderSummary, 0, len(h.catalog.Folders()))
	for _, f := range h.catalog.Folders() {
		fs := FolderSummary{ID: f.ID, Title: f.Title, VideoURL: f.VideoURL}
		for _, ep := range f.Episodes {
			es := EpisodeSummary{ID: ep.ID, Title: ep.Title}
			lessonKey := lessons.Ref{Folder: f.ID, Episode: ep.ID}.LessonKey()
			for _, p := range ep.Parts {
				ps := PartSummary{ID: p.ID, Title: p.Title}
				if score, ok := record.Get(lessonKey, p.ID); ok {
					ps.Score = &score
				}
				es.Parts = append(es.Parts, ps)
			}
			fs.Episodes = append(fs.Episodes, es)
		}
		folders = append(folders, fs)
	}

	respondJSON(w, http.StatusOK, folders)
}

// GetPart returns one part
func (h *LessonHandler) GetPart(w http.ResponseWriter, r *http.Request) {
	ref := partRef(r)
	part, err := h.catalog.Part(ref)
	if err != nil {
		respondWithServiceError(w, "Error loading part", err)
		return
	}

	previous, err := h.progressService.PartScore(r.Context(), userID(r), ref)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load score", "Error loading part score", err)
		return
	}

	respondJSON(w, http.StatusOK, PartView{Part: part, Lesson: ref, PreviousScore: previous})
}

// StartRun opens a fresh pass through a part
func (h *LessonHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.exerciseService.StartRun(r.Context(), userID(r), partRef(r))
	if err != nil {
		respondWithServiceError(w, "Error starting run", err)
		return
	}
	respondJSON(w, http.StatusCreated, run)
}
