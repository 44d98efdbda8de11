package internal

import "strings"

// Key prefixes of the persisted layout; the identity storage key follows the '@'
const (
	SessionsKeyPrefix = "sessions@"
	ActiveKeyPrefix   = "active@"
)

// CollectionState is everything persisted for one identity
type CollectionState struct {
	Sessions []ChatSession `json:"sessions" yaml:"sessions"`
	ActiveID string        `json:"activeId,omitempty" yaml:"active_id,omitempty"`
}

// Persistence loads and saves an identity's collection state by storage key
type Persistence interface {
	// Load never fails: absent or unreadable state yields the empty defaults
	Load(key string) CollectionState
	Save(key string, state CollectionState) error
}

// SessionsKey returns the medium key holding the session collection for key
func SessionsKey(key string) string {
	return SessionsKeyPrefix + key
}

// ActiveKey returns the medium key holding the active session pointer for key
func ActiveKey(key string) string {
	return ActiveKeyPrefix + key
}

// KVPersistence stores collection state on a Medium using the session codec
type KVPersistence struct {
	medium Medium
}

// NewKVPersistence creates a Persistence over medium
func NewKVPersistence(medium Medium) *KVPersistence {
	return &KVPersistence{medium: medium}
}

// Medium returns the underlying medium
func (p *KVPersistence) Medium() Medium {
	return p.medium
}

// Load implements Persistence
func (p *KVPersistence) Load(key string) CollectionState {
	state := CollectionState{Sessions: []ChatSession{}}

	raw, ok, err := p.medium.Get(SessionsKey(key))
	if err != nil {
		LogWarn("Failed to read sessions for %s, starting empty: %v", key, err)
	} else if ok {
		sessions, err := DecodeSessions(raw)
		if err != nil {
			LogWarn("%v", &ParseError{Source: "sessions", Key: SessionsKey(key), Err: err})
		} else {
			state.Sessions = sessions
		}
	}

	active, ok, err := p.medium.Get(ActiveKey(key))
	if err != nil {
		LogWarn("Failed to read active session for %s: %v", key, err)
	} else if ok {
		state.ActiveID = strings.TrimSpace(active)
	}

	return state
}

// Save implements Persistence. An empty active pointer removes the active key.
func (p *KVPersistence) Save(key string, state CollectionState) error {
	encoded, err := EncodeSessions(state.Sessions)
	if err != nil {
		return &StorageError{Key: SessionsKey(key), Op: "encode", Err: err}
	}
	if err := p.medium.Set(SessionsKey(key), encoded); err != nil {
		return err
	}

	if state.ActiveID == "" {
		return p.medium.Delete(ActiveKey(key))
	}
	return p.medium.Set(ActiveKey(key), state.ActiveID)
}

// StoredIdentities lists the storage keys that have a persisted session collection
func StoredIdentities(medium Medium) ([]string, error) {
	keys, err := medium.Keys(SessionsKeyPrefix)
	if err != nil {
		return nil, err
	}
	identities := make([]string, 0, len(keys))
	for _, key := range keys {
		identities = append(identities, strings.TrimPrefix(key, SessionsKeyPrefix))
	}
	return identities, nil
}
