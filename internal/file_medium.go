package internal

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	fileMediumExt = ".kv"
	// hashedFileExt marks files named by the key's sha256; the key is the first line
	hashedFileExt = ".kvh"
	// maxFileNameLen stays below the 255 byte limit of common filesystems
	maxFileNameLen = 200
)

// FileMedium stores each key in its own file under dir.
// File names are the base64url encoding of the key, so any identity token is a safe name.
// Keys too long for that are stored under the hex sha256 of the key instead.
type FileMedium struct {
	mu  sync.Mutex
	dir string
}

// NewFileMedium creates the directory if needed and returns a FileMedium over it
func NewFileMedium(dir string) (*FileMedium, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileMedium{dir: dir}, nil
}

// Dir returns the directory holding the key files
func (f *FileMedium) Dir() string {
	return f.dir
}

// Get implements Medium
func (f *FileMedium) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, hashed := f.path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Key: key, Op: "get", Err: err}
	}
	if !hashed {
		return string(data), true, nil
	}

	stored, value, _ := strings.Cut(string(data), "\n")
	if stored != key {
		return "", false, &StorageError{Key: key, Op: "get", Err: fmt.Errorf("%s holds key %q", filepath.Base(path), stored)}
	}
	return value, true, nil
}

// Set implements Medium
func (f *FileMedium) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, hashed := f.path(key)
	data := value
	if hashed {
		data = key + "\n" + value
	}
	if err := atomicWriteFile(path, []byte(data), 0600); err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements Medium
func (f *FileMedium) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, _ := f.path(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Keys implements Medium
func (f *FileMedium) Keys(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, &StorageError{Key: prefix, Op: "keys", Err: err}
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, ok := f.keyOf(entry.Name())
		if ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// path returns the file holding key and whether it is named by the key's hash
func (f *FileMedium) path(key string) (string, bool) {
	name := base64.RawURLEncoding.EncodeToString([]byte(key)) + fileMediumExt
	if len(name) <= maxFileNameLen {
		return filepath.Join(f.dir, name), false
	}
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:])+hashedFileExt), true
}

// keyOf recovers the key stored in the file called name
func (f *FileMedium) keyOf(name string) (string, bool) {
	switch {
	case strings.HasSuffix(name, fileMediumExt):
		raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSuffix(name, fileMediumExt))
		if err != nil {
			// Not one of ours
			return "", false
		}
		return string(raw), true
	case strings.HasSuffix(name, hashedFileExt):
		data, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			return "", false
		}
		key, _, ok := strings.Cut(string(data), "\n")
		return key, ok
	}
	return "", false
}

// atomicWriteFile writes to a temp file in the same directory, syncs it and renames it
// over path, so a crash leaves either the old or the new content.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
