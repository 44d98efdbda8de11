package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned by lookups for an id outside the bound collection
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyQuestion is returned when a blank question is submitted
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrAdminRequired is returned when a regular user runs an administrative operation
	ErrAdminRequired = errors.New("this operation requires the admin role")
)

// StorageError represents errors accessing the persistence medium
type StorageError struct {
	Key string
	Op  string // "get", "set", "delete", "keys", "open"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding persisted data
type ParseError struct {
	Source string // "sessions", "backup"
	Key    string // storage key or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
