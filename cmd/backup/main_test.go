package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeStore records what the CLI asked of it
type fakeStore struct {
	exported string
	imported string
	cleared  bool
	err      error
}

func (f *fakeStore) Export(path string) error {
	f.exported = path
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("{}"), 0644)
}

func (f *fakeStore) Import(path string) error {
	f.imported = path
	return f.err
}

func (f *fakeStore) Clear() error {
	f.cleared = true
	return nil
}

func TestDefaultBackupPath(t *testing.T) {
	at := time.Date(2026, 3, 9, 14, 5, 7, 0, time.UTC)
	if got := defaultBackupPath(at); got != "backup_20260309_140507.json" {
		t.Errorf("defaultBackupPath() = %q", got)
	}
}

func TestExportBackupCreatesDirectory(t *testing.T) {
	store := &fakeStore{}
	out := filepath.Join(t.TempDir(), "nested", "today.json")

	path, err := exportBackup(store, out, time.Now())
	if err != nil {
		t.Fatalf("exportBackup() error = %v", err)
	}
	if path != out || store.exported != out {
		t.Errorf("path = %q, exported = %q, want %q", path, store.exported, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("backup not written: %v", err)
	}
}

func TestExportBackupReportsFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	if _, err := exportBackup(store, filepath.Join(t.TempDir(), "b.json"), time.Now()); err == nil {
		t.Fatal("exportBackup() error = nil, want the store error")
	}
}

func TestImportBackup(t *testing.T) {
	input := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(input, []byte("{}"), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		clear       bool
		answer      string
		wantErr     error
		wantCleared bool
		wantImport  bool
	}{
		{name: "plain import", path: input, wantImport: true},
		{name: "clear confirmed", path: input, clear: true, answer: "yes\n", wantCleared: true, wantImport: true},
		{name: "clear declined", path: input, clear: true, answer: "no\n", wantErr: errCancelled},
		{name: "clear with no answer", path: input, clear: true, wantErr: errCancelled},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.json"), clear: true, answer: "yes\n", wantErr: os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			var prompt bytes.Buffer

			err := importBackup(store, tt.path, tt.clear, strings.NewReader(tt.answer), &prompt)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("importBackup() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("importBackup() error = %v", err)
			}
			if store.cleared != tt.wantCleared {
				t.Errorf("cleared = %v, want %v", store.cleared, tt.wantCleared)
			}
			if (store.imported != "") != tt.wantImport {
				t.Errorf("imported = %q, want import %v", store.imported, tt.wantImport)
			}
			if tt.clear && tt.path == input && !strings.Contains(prompt.String(), "Type 'yes'") {
				t.Errorf("prompt = %q, want a confirmation request", prompt.String())
			}
		})
	}
}

func TestPrintUsageListsCommands(t *testing.T) {
	var out bytes.Buffer
	printUsage(&out)
	for _, want := range []string{"backup export", "backup import", "-clear", "DB_TYPE"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}
