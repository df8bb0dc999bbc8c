package repository

import (
	"context"
	"database/sql"
	"fmt"

	"linguaclash/internal/database"
	"linguaclash/internal/models"
)

// DictionaryRepository stores saved words in dictionary_entries
type DictionaryRepository struct {
	db *database.DB
}

// NewDictionaryRepository creates a new dictionary repository
func NewDictionaryRepository(db *database.DB) *DictionaryRepository {
	return &DictionaryRepository{db: db}
}

// SaveWord adds entry to the user's folder. Saving a word that is already in
// the folder (ignoring case) is a no-op and reports added=false.
func (r *DictionaryRepository) SaveWord(ctx context.Context, userID int64, entry models.DictionaryEntry) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Dialect.InsertWordQuery(),
		userID, entry.Folder, entry.Word, entry.Key(), entry.Definition)
	if err != nil {
		return false, fmt.Errorf("failed to save word: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read save result: %w", err)
	}
	return n > 0, nil
}

// Entries lists a user's saved words. An empty folder lists every folder.
func (r *DictionaryRepository) Entries(ctx context.Context, userID int64, folder string) ([]models.DictionaryEntry, error) {
	query := `
		SELECT id, user_id, folder, word, COALESCE(definition, ''), created_at
		FROM dictionary_entries
		WHERE user_id = ?
	`
	args := []any{userID}
	if folder != "" {
		query += " AND folder = ?"
		args = append(args, folder)
	}
	query += " ORDER BY folder, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dictionary: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// AllEntries lists every saved word, for backups
func (r *DictionaryRepository) AllEntries(ctx context.Context) ([]models.DictionaryEntry, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, user_id, folder, word, COALESCE(definition, ''), created_at FROM dictionary_entries ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query dictionary: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// DeleteUser removes all saved words of a user
func (r *DictionaryRepository) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM dictionary_entries WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete dictionary: %w", err)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]models.DictionaryEntry, error) {
	var entries []models.DictionaryEntry
	for rows.Next() {
		var e models.DictionaryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Folder, &e.Word, &e.Definition, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dictionary entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
