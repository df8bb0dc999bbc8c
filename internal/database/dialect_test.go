package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if result {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO users (name, email) VALUES (?, ?)",
			expected: "INSERT INTO users (name, email) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE users SET name = ?, email = ? WHERE id = ?",
			expected: "UPDATE users SET name = ?, email = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dbType string
		want   string
	}{
		{"", "sqlite3"},
		{"sqlite", "sqlite3"},
		{"PostgreSQL", "postgres"},
		{"postgres", "postgres"},
		{"mysql", "mysql"},
	}

	for _, tt := range tests {
		dialect, err := DialectFor(tt.dbType)
		if err != nil {
			t.Fatalf("DialectFor(%q) error = %v", tt.dbType, err)
		}
		if got := dialect.DriverName(); got != tt.want {
			t.Errorf("DialectFor(%q).DriverName() = %v, want %v", tt.dbType, got, tt.want)
		}
	}

	if _, err := DialectFor("oracle"); err == nil {
		t.Error("DialectFor(oracle) should fail")
	}
}

func TestUpsertQueries(t *testing.T) {
	tests := []struct {
		dialect    Dialect
		scoreToken string
		wordToken  string
	}{
		{NewSQLiteDialect(), "ON CONFLICT", "OR IGNORE"},
		{NewPostgresDialect(), "ON CONFLICT", "DO NOTHING"},
		{NewMySQLDialect(), "ON DUPLICATE KEY", "INSERT IGNORE"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.DriverName(), func(t *testing.T) {
			if q := tt.dialect.UpsertScoreQuery(); !strings.Contains(q, tt.scoreToken) {
				t.Errorf("UpsertScoreQuery() = %q, want it to contain %q", q, tt.scoreToken)
			}
			if q := tt.dialect.InsertWordQuery(); !strings.Contains(q, tt.wordToken) {
				t.Errorf("InsertWordQuery() = %q, want it to contain %q", q, tt.wordToken)
			}
			if n := strings.Count(tt.dialect.UpsertScoreQuery(), "?"); n != 4 {
				t.Errorf("UpsertScoreQuery() has %d placeholders, want 4", n)
			}
			if n := strings.Count(tt.dialect.InsertWordQuery(), "?"); n != 5 {
				t.Errorf("InsertWordQuery() has %d placeholders, want 5", n)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	d := NewSQLiteDialect()
	if got := d.DSN(DialectConfig{Path: "app.db"}); got != "app.db?_foreign_keys=on&_busy_timeout=5000" {
		t.Errorf("DSN() = %v", got)
	}
	if got := d.DSN(DialectConfig{Path: "file::memory:?cache=shared"}); got != "file::memory:?cache=shared" {
		t.Errorf("DSN() should keep explicit options, got %v", got)
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- header
CREATE TABLE a (id INTEGER);

-- second
CREATE TABLE b (id INTEGER);
`
	stmts := splitStatements(content)
	if len(stmts) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %q", len(stmts), stmts)
	}
	if stmts[1] != "CREATE TABLE b (id INTEGER)" {
		t.Errorf("stmts[1] = %q", stmts[1])
	}
}
