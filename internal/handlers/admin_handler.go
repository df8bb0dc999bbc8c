package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"linguaclash/internal/repository"
	"linguaclash/internal/service"
)

// AdminHandler handles administrator requests
type AdminHandler struct {
	userRepo        *repository.UserRepository
	feedbackService *service.FeedbackService
	backupService   *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(userRepo *repository.UserRepository, feedbackService *service.FeedbackService, backupService *service.BackupService) *AdminHandler {
	return &AdminHandler{
		userRepo:        userRepo,
		feedbackService: feedbackService,
		backupService:   backupService,
	}
}

// DatabaseStats holds database statistics
type DatabaseStats struct {
	Users      int `json:"users"`
	Scores     int `json:"scores"`
	Dictionary int `json:"dictionary_entries"`
	Feedback   int `json:"feedback"`
}

// ListUsers returns every account
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.GetAllUsers()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load users", "Error loading users", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// ListFeedback returns every rating, newest first
func (h *AdminHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.feedbackService.All(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load feedback", "Error loading feedback", err)
		return
	}
	respondJSON(w, http.StatusOK, feedback)
}

// Stats returns row counts for the admin dashboard
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.getDatabaseStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load statistics", "Error getting database stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ExportDatabase exports the database to JSON for download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("linguaclash_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.backupService.ExportToWriter(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export database", "Error exporting database", err)
		return
	}

	log.Printf("Database exported by admin user %s", user.Email)
}

// ImportDatabase restores a backup uploaded as the backup_file form field.
// With clear_data=true the existing rows are removed first.
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	// 10MB max
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to parse form", "", nil)
		return
	}

	file, _, err := r.FormFile("backup_file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Please select a backup file", "", nil)
		return
	}
	defer file.Close()

	clearData := r.FormValue("clear_data") == "true"
	if clearData {
		log.Printf("Admin %s requested database clear before import", user.Email)
		if err := h.backupService.Clear(); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to clear database", "Error clearing database", err)
			return
		}
	}

	if err := h.backupService.ImportFromReader(file); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import database: "+err.Error(), "Error importing database", err)
		return
	}

	log.Printf("Database imported successfully by admin user %s (clear_data=%v)", user.Email, clearData)

	stats, err := h.getDatabaseStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load statistics", "Error getting database stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) getDatabaseStats() (*DatabaseStats, error) {
	stats := &DatabaseStats{}
	db := h.backupService.GetDB()

	counts := []struct {
		table string
		dst   *int
	}{
		{"users", &stats.Users},
		{"user_scores", &stats.Scores},
		{"dictionary_entries", &stats.Dictionary},
		{"feedback", &stats.Feedback},
	}
	for _, c := range counts {
		if err := db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	return stats, nil
}
