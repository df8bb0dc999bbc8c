package service

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"linguaclash/internal/models"
	"linguaclash/internal/repository"
)

func seedBackupData(t *testing.T, f *authFixture, feedback *repository.FeedbackRepository) *models.User {
	t.Helper()
	ctx := context.Background()

	user, err := f.users.CreateUser("saved@example.com", "hash", "Saved")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := f.scores.SetScore(ctx, user.ID, part1.LessonKey(), "part1", 82.5); err != nil {
		t.Fatalf("SetScore() error = %v", err)
	}
	if _, err := f.words.SaveWord(ctx, user.ID, models.DictionaryEntry{Folder: "shows", Word: "hoard", Definition: "to hide"}); err != nil {
		t.Fatalf("SaveWord() error = %v", err)
	}
	if _, err := feedback.Create(ctx, &user.ID, 5, "lovely"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := feedback.Create(ctx, nil, 3, ""); err != nil {
		t.Fatalf("Create() guest error = %v", err)
	}
	return user
}

func TestBackupExportToWriter(t *testing.T) {
	f := newAuthFixture(t, 0)
	db := f.db
	seedBackupData(t, f, repository.NewFeedbackRepository(db))

	var buf bytes.Buffer
	if err := NewBackupService(db).ExportToWriter(&buf); err != nil {
		t.Fatalf("ExportToWriter() error = %v", err)
	}

	var backup BackupData
	if err := json.Unmarshal(buf.Bytes(), &backup); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	if len(backup.Users) != 1 || len(backup.Scores) != 1 || len(backup.Dictionary) != 1 || len(backup.Feedback) != 2 {
		t.Errorf("exported %d users, %d scores, %d words, %d feedback",
			len(backup.Users), len(backup.Scores), len(backup.Dictionary), len(backup.Feedback))
	}
	if backup.Dictionary[0].WordKey != "hoard" {
		t.Errorf("word key = %q, want hoard", backup.Dictionary[0].WordKey)
	}
	if backup.Feedback[1].UserID != nil {
		t.Errorf("guest feedback user = %v, want nil", backup.Feedback[1].UserID)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	src := newAuthFixture(t, 0)
	srcDB := src.db
	user := seedBackupData(t, src, repository.NewFeedbackRepository(srcDB))

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := NewBackupService(srcDB).Export(path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	dst := newAuthFixture(t, 0)
	dstDB := dst.db
	if err := NewBackupService(dstDB).Import(path); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	ctx := context.Background()
	got, err := dst.users.GetUserByEmail("saved@example.com")
	if err != nil || got == nil || got.ID != user.ID {
		t.Fatalf("imported user = %+v, %v", got, err)
	}
	score, ok, err := dst.scores.GetScore(ctx, user.ID, part1.LessonKey(), "part1")
	if err != nil || !ok || score != 82.5 {
		t.Errorf("imported score = %v, %v, %v; want 82.5", score, ok, err)
	}
	words, _ := dst.words.Entries(ctx, user.ID, "shows")
	if len(words) != 1 || words[0].Word != "hoard" {
		t.Errorf("imported words = %+v", words)
	}
	fb, _ := repository.NewFeedbackRepository(dstDB).All(ctx)
	if len(fb) != 2 {
		t.Errorf("imported %d feedback entries, want 2", len(fb))
	}

	// a new user must not collide with imported ids
	if _, err := dst.users.CreateUser("next@example.com", "hash", "Next"); err != nil {
		t.Errorf("CreateUser() after import error = %v", err)
	}
}

func TestBackupImportIsAtomic(t *testing.T) {
	f := newAuthFixture(t, 0)
	db := f.db

	// the score references a user that is not in the backup
	broken := `{"version":"2.0","users":[{"id":1,"email":"a@example.com","name":"A"}],"scores":[{"user_id":99,"lesson_key":"shows/ep1","part_id":"part1","score":50}]}`
	if err := NewBackupService(db).ImportFromReader(bytes.NewBufferString(broken)); err == nil {
		t.Fatal("ImportFromReader() should fail on a dangling score")
	}

	if u, _ := f.users.GetUserByEmail("a@example.com"); u != nil {
		t.Error("a failed import should not leave rows behind")
	}
}

func TestBackupClear(t *testing.T) {
	f := newAuthFixture(t, 0)
	db := f.db
	seedBackupData(t, f, repository.NewFeedbackRepository(db))

	if err := NewBackupService(db).Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	users, err := f.users.GetAllUsers()
	if err != nil {
		t.Fatalf("GetAllUsers() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("users left = %d, want 0", len(users))
	}
}
