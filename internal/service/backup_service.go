package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"linguaclash/internal/database"
)

const backupVersion = "2.0"

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// BackupData represents the complete database backup
type BackupData struct {
	Version      string             `json:"version"`
	ExportedAt   time.Time          `json:"exported_at"`
	DatabaseType string             `json:"database_type"`
	Users        []UserBackup       `json:"users"`
	Scores       []ScoreBackup      `json:"scores"`
	Dictionary   []DictionaryBackup `json:"dictionary"`
	Feedback     []FeedbackBackup   `json:"feedback"`
}

// UserBackup represents a user in the backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider,omitempty"`
	OAuthSubject  string    `json:"oauth_subject,omitempty"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ScoreBackup is one stored part average
type ScoreBackup struct {
	UserID    int64     `json:"user_id"`
	LessonKey string    `json:"lesson_key"`
	PartID    string    `json:"part_id"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DictionaryBackup is one saved dictionary word
type DictionaryBackup struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Folder     string    `json:"folder"`
	Word       string    `json:"word"`
	WordKey    string    `json:"word_key"`
	Definition string    `json:"definition"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackBackup is one feedback submission
type FeedbackBackup struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// GetDB returns the database connection
func (s *BackupService) GetDB() *database.DB {
	return s.db
}

// Export exports the entire database to a JSON file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	backup, err := s.collect()
	if err != nil {
		return err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := encodeBackup(file, backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d users, %d scores, %d dictionary words, %d feedback entries",
		len(backup.Users), len(backup.Scores), len(backup.Dictionary), len(backup.Feedback))
	return nil
}

// ExportToWriter exports the database to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup, err := s.collect()
	if err != nil {
		return err
	}
	return encodeBackup(w, backup)
}

func encodeBackup(w io.Writer, backup *BackupData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

func (s *BackupService) collect() (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
	}

	if err := s.exportUsers(backup); err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportScores(backup); err != nil {
		return nil, fmt.Errorf("failed to export scores: %w", err)
	}
	if err := s.exportDictionary(backup); err != nil {
		return nil, fmt.Errorf("failed to export dictionary: %w", err)
	}
	if err := s.exportFeedback(backup); err != nil {
		return nil, fmt.Errorf("failed to export feedback: %w", err)
	}
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader (for file uploads).
// All rows are written in a single transaction.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Import in order of dependencies
	if err := importUsers(tx, backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := importScores(tx, backup.Scores); err != nil {
		return fmt.Errorf("failed to import scores: %w", err)
	}
	if err := importDictionary(tx, backup.Dictionary); err != nil {
		return fmt.Errorf("failed to import dictionary: %w", err)
	}
	if err := importFeedback(tx, backup.Feedback); err != nil {
		return fmt.Errorf("failed to import feedback: %w", err)
	}

	if _, ok := s.db.GetDialect().(*database.PostgresDialect); ok {
		if err := resetSequences(tx); err != nil {
			return fmt.Errorf("failed to reset sequences: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

// Clear deletes every row, children first
func (s *BackupService) Clear() error {
	tables := []string{
		"feedback",
		"dictionary_entries",
		"user_scores",
		"sessions",
		"users",
	}

	for _, table := range tables {
		query := fmt.Sprintf("DELETE FROM %s", table)
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		log.Printf("Cleared table: %s", table)
	}
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), is_admin, created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportScores(backup *BackupData) error {
	query := "SELECT user_id, lesson_key, part_id, score, updated_at FROM user_scores ORDER BY user_id, lesson_key, part_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sc ScoreBackup
		if err := rows.Scan(&sc.UserID, &sc.LessonKey, &sc.PartID, &sc.Score, &sc.UpdatedAt); err != nil {
			return err
		}
		backup.Scores = append(backup.Scores, sc)
	}
	return rows.Err()
}

func (s *BackupService) exportDictionary(backup *BackupData) error {
	query := "SELECT id, user_id, folder, word, word_key, COALESCE(definition, ''), created_at FROM dictionary_entries ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d DictionaryBackup
		if err := rows.Scan(&d.ID, &d.UserID, &d.Folder, &d.Word, &d.WordKey, &d.Definition, &d.CreatedAt); err != nil {
			return err
		}
		backup.Dictionary = append(backup.Dictionary, d)
	}
	return rows.Err()
}

func (s *BackupService) exportFeedback(backup *BackupData) error {
	query := "SELECT id, user_id, rating, COALESCE(message, ''), created_at FROM feedback ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FeedbackBackup
		var userID *int64
		if err := rows.Scan(&f.ID, &userID, &f.Rating, &f.Message, &f.CreatedAt); err != nil {
			return err
		}
		f.UserID = userID
		backup.Feedback = append(backup.Feedback, f)
	}
	return rows.Err()
}

func importUsers(tx *database.Tx, users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := "INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, is_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name, nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.IsAdmin, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func importScores(tx *database.Tx, scores []ScoreBackup) error {
	log.Printf("Importing %d scores...", len(scores))
	for _, sc := range scores {
		query := "INSERT INTO user_scores (user_id, lesson_key, part_id, score, updated_at) VALUES (?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, sc.UserID, sc.LessonKey, sc.PartID, sc.Score, sc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import score %s/%s for user %d: %w", sc.LessonKey, sc.PartID, sc.UserID, err)
		}
	}
	return nil
}

func importDictionary(tx *database.Tx, entries []DictionaryBackup) error {
	log.Printf("Importing %d dictionary words...", len(entries))
	for _, d := range entries {
		query := "INSERT INTO dictionary_entries (id, user_id, folder, word, word_key, definition, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, d.ID, d.UserID, d.Folder, d.Word, d.WordKey, d.Definition, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import dictionary word %d: %w", d.ID, err)
		}
	}
	return nil
}

func importFeedback(tx *database.Tx, feedback []FeedbackBackup) error {
	log.Printf("Importing %d feedback entries...", len(feedback))
	for _, f := range feedback {
		query := "INSERT INTO feedback (id, user_id, rating, message, created_at) VALUES (?, ?, ?, ?, ?)"
		_, err := tx.Exec(query, f.ID, f.UserID, f.Rating, f.Message, f.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import feedback %d: %w", f.ID, err)
		}
	}
	return nil
}

// resetSequences moves postgres serial counters past imported ids
func resetSequences(tx *database.Tx) error {
	for _, table := range []string{"users", "dictionary_entries", "feedback"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", table, table)
		if _, err := tx.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
