package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// AliceSessionsJSON is a persisted collection for an admin with two sessions, newest first
const AliceSessionsJSON = `[
  {
    "id": "s-alice-2",
    "title": "Inheritance shares for daughters",
    "messages": [
      {"id": "m-4", "content": "Welcome!", "role": "assistant", "timestamp": "2025-03-02T10:00:00Z"},
      {"id": "m-5", "content": "Inheritance shares for daughters", "role": "user", "timestamp": "2025-03-02T10:01:00Z"}
    ],
    "createdAt": "2025-03-02T10:00:00Z",
    "updatedAt": "2025-03-02T10:01:00Z"
  },
  {
    "id": "s-alice-1",
    "title": "New Chat",
    "messages": [
      {"id": "m-1", "content": "Welcome!", "role": "assistant", "timestamp": "2025-03-01T09:00:00Z"}
    ],
    "createdAt": "2025-03-01T09:00:00Z",
    "updatedAt": "2025-03-01T09:00:00Z"
  }
]`

// GuestSessionsJSON is a persisted collection for the guest identity
const GuestSessionsJSON = `[
  {
    "id": "s-guest-1",
    "title": "How do I register a company?",
    "messages": [
      {"id": "g-1", "content": "Welcome!", "role": "assistant", "timestamp": "2025-03-03T08:00:00Z"},
      {"id": "g-2", "content": "How do I register a company?", "role": "user", "timestamp": "2025-03-03T08:00:30Z"}
    ],
    "createdAt": "2025-03-03T08:00:00Z",
    "updatedAt": "2025-03-03T08:00:30Z"
  }
]`

// CreateSQLiteFixture creates a SQLite database file holding the sample identities
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createKVTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	insertSQL := "INSERT INTO chat_kv (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, "sessions@alice", AliceSessionsJSON); err != nil {
		t.Fatalf("Failed to insert sessions: %v", err)
	}
	if _, err := db.Exec(insertSQL, "active@alice", "s-alice-2"); err != nil {
		t.Fatalf("Failed to insert active pointer: %v", err)
	}
}

// CreateFileFixture writes a raw file, creating parent directories
func CreateFileFixture(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
}

// CreateDataDir creates a temp lawchat data directory with a populated database and
// a config file pointing at it, and returns the directory
func CreateDataDir(t *testing.T) string {
	t.Helper()
	dir := CreateTempDir(t)
	CreateSQLiteFixture(t, filepath.Join(dir, "lawchat.db"))
	CreateFileFixture(t, filepath.Join(dir, "config.yaml"), []byte("storage:\n  backend: sqlite\n"))
	return dir
}
