package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// KVTable is the sqlite table backing SQLiteMedium
const KVTable = "chat_kv"

const createKVTableSQL = `
CREATE TABLE IF NOT EXISTS chat_kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// OpenDatabase opens (creating if needed) a SQLite database and ensures the key/value schema
func OpenDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps writes serialized and ":memory:" databases shared
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the key/value table when missing
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(createKVTableSQL); err != nil {
		return fmt.Errorf("failed to create %s table: %w", KVTable, err)
	}
	return nil
}

// QueryKV queries the key/value table for keys starting with prefix.
// LIKE ignores ASCII case, so the prefix is also compared exactly.
func QueryKV(db *sql.DB, prefix string) ([]KeyValuePair, error) {
	query := `SELECT key, value FROM chat_kv
		WHERE key LIKE ? ESCAPE '\' AND substr(key, 1, length(?)) = ?
		ORDER BY key`
	rows, err := db.Query(query, escapeLike(prefix)+"%", prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		if err := rows.Scan(&pair.Key, &pair.Value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		pairs = append(pairs, pair)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// KeyValuePair represents a row of the key/value table
type KeyValuePair struct {
	Key   string
	Value string
}

// escapeLike escapes LIKE wildcards so identity keys match literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
