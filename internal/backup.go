package internal

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BackupVersion is written into every backup index
const BackupVersion = "1.0"

// BackupManager writes and reads portable snapshots of every identity's sessions
type BackupManager struct {
	dir string
}

// BackupMetadata stores metadata about a backup
type BackupMetadata struct {
	Backend   string    `yaml:"backend"`
	Version   string    `yaml:"version"`
	CreatedAt time.Time `yaml:"created_at"`
}

// BackupEntry represents one identity in the backup index
type BackupEntry struct {
	Key          string    `yaml:"key"`
	File         string    `yaml:"file"`
	SessionCount int       `yaml:"session_count"`
	ActiveID     string    `yaml:"active_id,omitempty"`
	UpdatedAt    time.Time `yaml:"updated_at,omitempty"`
}

// BackupIndex represents the YAML index of a backup
type BackupIndex struct {
	Identities []BackupEntry  `yaml:"identities"`
	Metadata   BackupMetadata `yaml:"metadata"`
}

// identitySnapshot is the JSON document stored per identity
type identitySnapshot struct {
	Key      string        `json:"key"`
	ActiveID string        `json:"activeId,omitempty"`
	Sessions []ChatSession `json:"sessions"`
}

// NewBackupManager creates a backup manager rooted at dir
func NewBackupManager(dir string) *BackupManager {
	return &BackupManager{dir: dir}
}

// Dir returns the backup directory
func (bm *BackupManager) Dir() string {
	return bm.dir
}

// EnsureDir ensures the backup directory exists
func (bm *BackupManager) EnsureDir() error {
	return os.MkdirAll(bm.dir, 0755)
}

// IndexPath returns the path to the backup index YAML file
func (bm *BackupManager) IndexPath() string {
	return filepath.Join(bm.dir, "index.yaml")
}

// IdentityPath returns the path of the snapshot file for a storage key.
// Keys are opaque tokens, so they are base64url encoded into the file name.
func (bm *BackupManager) IdentityPath(key string) string {
	return filepath.Join(bm.dir, identityFileName(key))
}

func identityFileName(key string) string {
	return fmt.Sprintf("identity_%s.json", base64.RawURLEncoding.EncodeToString([]byte(key)))
}

// LoadIndex loads the backup index
func (bm *BackupManager) LoadIndex() (*BackupIndex, error) {
	data, err := os.ReadFile(bm.IndexPath())
	if err != nil {
		return nil, err
	}

	var index BackupIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, &ParseError{Source: "backup index", Key: bm.IndexPath(), Err: err}
	}
	return &index, nil
}

// SaveIndex saves the backup index
func (bm *BackupManager) SaveIndex(index *BackupIndex) error {
	if err := bm.EnsureDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return atomicWriteFile(bm.IndexPath(), data, 0644)
}

// Backup snapshots every identity stored on medium. Identities whose collection cannot
// be decoded are written as empty, matching what the store would load for them.
func (bm *BackupManager) Backup(medium Medium, backend string) (*BackupIndex, error) {
	if err := bm.EnsureDir(); err != nil {
		return nil, err
	}

	keys, err := StoredIdentities(medium)
	if err != nil {
		return nil, err
	}

	persistence := NewKVPersistence(medium)
	index := &BackupIndex{
		Identities: make([]BackupEntry, 0, len(keys)),
		Metadata: BackupMetadata{
			Backend:   backend,
			Version:   BackupVersion,
			CreatedAt: time.Now().UTC(),
		},
	}

	for _, key := range keys {
		state := persistence.Load(key)
		snapshot := identitySnapshot{
			Key:      key,
			ActiveID: state.ActiveID,
			Sessions: state.Sessions,
		}
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal sessions for %s: %w", key, err)
		}
		if err := atomicWriteFile(bm.IdentityPath(key), data, 0600); err != nil {
			return nil, &StorageError{Key: key, Op: "backup", Err: err}
		}

		entry := BackupEntry{
			Key:          key,
			File:         identityFileName(key),
			SessionCount: len(state.Sessions),
			ActiveID:     state.ActiveID,
		}
		if len(state.Sessions) > 0 {
			entry.UpdatedAt = state.Sessions[0].UpdatedAt
		}
		index.Identities = append(index.Identities, entry)
		LogDebug("Backed up %d session(s) for %s", entry.SessionCount, key)
	}

	if err := bm.SaveIndex(index); err != nil {
		return nil, err
	}
	return index, nil
}

// Restore writes every identity in the backup through persistence, replacing what is
// stored under the same keys. It returns the number of identities restored. Snapshot
// files that are missing or unreadable are skipped with a warning.
func (bm *BackupManager) Restore(persistence Persistence) (int, error) {
	return bm.restore(persistence, false)
}

// RestoreMerged is Restore, except that restored sessions are merged into the stored
// collections instead of replacing them. The stored active pointer is kept when it
// still resolves, then the snapshot's; a pointer naming no merged session is cleared.
func (bm *BackupManager) RestoreMerged(persistence Persistence) (int, error) {
	return bm.restore(persistence, true)
}

func (bm *BackupManager) restore(persistence Persistence, merge bool) (int, error) {
	index, err := bm.LoadIndex()
	if err != nil {
		return 0, err
	}

	dedup := NewDeduplicator()
	restored := 0
	for _, entry := range index.Identities {
		snapshot, err := bm.loadSnapshot(entry)
		if err != nil {
			LogWarn("Skipping %s: %v", entry.Key, err)
			continue
		}

		state := CollectionState{Sessions: snapshot.Sessions, ActiveID: snapshot.ActiveID}
		if merge {
			current := persistence.Load(entry.Key)
			state.Sessions = dedup.Merge(current.Sessions, snapshot.Sessions)
			state.ActiveID = resolveActiveID(state.Sessions, current.ActiveID, snapshot.ActiveID)
		}
		if err := persistence.Save(entry.Key, state); err != nil {
			return restored, err
		}
		LogDebug("Restored %d session(s) for %s", len(state.Sessions), entry.Key)
		restored++
	}
	return restored, nil
}

// resolveActiveID returns the first candidate naming a session in sessions, or ""
func resolveActiveID(sessions []ChatSession, candidates ...string) string {
	for _, id := range candidates {
		if containsSession(sessions, id) {
			return id
		}
	}
	return ""
}

func containsSession(sessions []ChatSession, id string) bool {
	if id == "" {
		return false
	}
	for _, s := range sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (bm *BackupManager) loadSnapshot(entry BackupEntry) (*identitySnapshot, error) {
	file := entry.File
	if file == "" {
		file = identityFileName(entry.Key)
	}
	data, err := os.ReadFile(filepath.Join(bm.dir, filepath.Base(file)))
	if err != nil {
		return nil, err
	}

	var snapshot identitySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, &ParseError{Source: "backup", Key: file, Err: err}
	}
	if snapshot.Sessions == nil {
		snapshot.Sessions = []ChatSession{}
	}
	for _, session := range snapshot.Sessions {
		for _, msg := range session.Messages {
			if !msg.Role.Valid() {
				return nil, &ParseError{Source: "backup", Key: file, Err: fmt.Errorf("message %s has invalid role %q", msg.ID, msg.Role)}
			}
		}
	}
	snapshot.Sessions = NewNormalizer().NormalizeSessions(snapshot.Sessions)
	return &snapshot, nil
}

// Clear removes the index and every snapshot it lists
func (bm *BackupManager) Clear() error {
	index, err := bm.LoadIndex()
	if err == nil {
		for _, entry := range index.Identities {
			_ = os.Remove(bm.IdentityPath(entry.Key))
		}
	}

	if err := os.Remove(bm.IndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
