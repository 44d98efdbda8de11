package internal

import (
	"database/sql"
	"errors"
)

// SQLiteMedium stores persisted state in the chat_kv table
type SQLiteMedium struct {
	db *sql.DB
}

// NewSQLiteMedium creates a new SQLiteMedium over an open database
func NewSQLiteMedium(db *sql.DB) *SQLiteMedium {
	return &SQLiteMedium{db: db}
}

// DB returns the underlying database
func (s *SQLiteMedium) DB() *sql.DB {
	return s.db
}

// Get implements Medium
func (s *SQLiteMedium) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM chat_kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Key: key, Op: "get", Err: err}
	}
	return value, true, nil
}

// Set implements Medium
func (s *SQLiteMedium) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO chat_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements Medium
func (s *SQLiteMedium) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM chat_kv WHERE key = ?", key); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Keys implements Medium
func (s *SQLiteMedium) Keys(prefix string) ([]string, error) {
	pairs, err := QueryKV(s.db, prefix)
	if err != nil {
		return nil, &StorageError{Key: prefix, Op: "keys", Err: err}
	}
	keys := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		keys = append(keys, pair.Key)
	}
	return keys, nil
}
