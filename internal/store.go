package internal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoreOptions customizes a SessionStore. Zero values select the defaults.
type StoreOptions struct {
	// WelcomeMessage seeds every new session (default DefaultWelcomeMessage)
	WelcomeMessage string
	// Now is the clock (default time.Now)
	Now func() time.Time
	// NewID generates session and message ids (default UUIDv7)
	NewID func() string
}

// SessionStore owns the session collection and active pointer of one bound identity
// and mirrors every mutation to its Persistence before returning.
//
// Unknown session ids passed to AddMessage, LoadChat and DeleteChat are silent no-ops.
// Mutations return an error only when the write-through fails; the in-memory state
// keeps the mutation either way.
type SessionStore struct {
	mu sync.Mutex

	persistence Persistence
	identity    Identity
	key         string

	sessions []ChatSession // newest first
	activeID string

	welcome string
	now     func() time.Time
	newID   func() string
}

// NewSessionStore creates a store bound to identity and loads its persisted state
func NewSessionStore(persistence Persistence, identity Identity, opts StoreOptions) *SessionStore {
	s := &SessionStore{
		persistence: persistence,
		welcome:     opts.WelcomeMessage,
		now:         opts.Now,
		newID:       opts.NewID,
	}
	if s.welcome == "" {
		s.welcome = DefaultWelcomeMessage
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = newTokenID
	}

	s.bind(identity)
	return s
}

// Bind switches the store to identity. When the storage key changes the in-memory
// collection and pointer are discarded and replaced by whatever is persisted under the
// new key; nothing carries over between identities. A role change under the same key
// only updates the retention policy.
func (s *SessionStore) Bind(identity Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if identity.StorageKey() == s.key {
		s.identity = identity
		return
	}
	s.bind(identity)
}

func (s *SessionStore) bind(identity Identity) {
	key := identity.StorageKey()
	state := s.persistence.Load(key)

	s.identity = identity
	s.key = key
	s.sessions = state.Sessions
	if s.sessions == nil {
		s.sessions = []ChatSession{}
	}
	s.activeID = state.ActiveID

	LogDebug("Bound session store to %s: %d session(s), active=%q", identity, len(s.sessions), s.activeID)
}

// Identity returns the bound identity
func (s *SessionStore) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// StorageKey returns the persistence key of the bound identity
func (s *SessionStore) StorageKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// CreateNewChat creates a session seeded with the welcome message and makes it active.
// Admins accumulate sessions (the new one is prepended); everyone else keeps a single
// session, which the new one replaces.
func (s *SessionStore) CreateNewChat() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := ChatSession{
		ID:    s.newID(),
		Title: DefaultTitle,
		Messages: []Message{{
			ID:        s.newID(),
			Content:   s.welcome,
			Role:      RoleAssistant,
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.identity.IsAdmin() {
		s.sessions = append([]ChatSession{session}, s.sessions...)
	} else {
		if len(s.sessions) > 0 {
			LogDebug("Replacing %d session(s) for %s", len(s.sessions), s.key)
		}
		s.sessions = []ChatSession{session}
	}
	s.activeID = session.ID

	return session.ID, s.persist()
}

// AddMessage appends msg to the session with sessionID. Only the first user message
// names the session, and only while the title is still DefaultTitle; a blank one
// leaves DefaultTitle for good. An empty msg.ID or zero
// msg.Timestamp is filled in.
func (s *SessionStore) AddMessage(sessionID string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(sessionID)
	if idx < 0 {
		LogDebug("AddMessage: no session %q for %s", sessionID, s.key)
		return nil
	}

	now := s.now()
	if msg.ID == "" {
		msg.ID = s.newID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}

	session := &s.sessions[idx]
	firstQuestion := msg.Role == RoleUser && session.UserMessageCount() == 0
	session.Messages = append(session.Messages, msg)
	if firstQuestion && session.HasDefaultTitle() {
		session.Title = DeriveTitle(msg.Content)
	}
	session.UpdatedAt = now

	return s.persist()
}

// LoadChat makes sessionID the active session without checking that it exists
func (s *SessionStore) LoadChat(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeID = sessionID
	return s.persist()
}

// DeleteChat removes the session with sessionID and clears the active pointer
// when it pointed at that session
func (s *SessionStore) DeleteChat(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(sessionID)
	if idx < 0 {
		LogDebug("DeleteChat: no session %q for %s", sessionID, s.key)
		return nil
	}

	s.sessions = append(s.sessions[:idx:idx], s.sessions[idx+1:]...)
	if s.activeID == sessionID {
		s.activeID = ""
	}
	return s.persist()
}

// EnsureSession returns the id of a session to talk in: the current one if the
// active pointer resolves, else the newest session, else a freshly created one
func (s *SessionStore) EnsureSession() (string, error) {
	s.mu.Lock()
	if s.indexOf(s.activeID) >= 0 {
		id := s.activeID
		s.mu.Unlock()
		return id, nil
	}
	if len(s.sessions) > 0 {
		id := s.sessions[0].ID
		s.activeID = id
		err := s.persist()
		s.mu.Unlock()
		return id, err
	}
	s.mu.Unlock()

	return s.CreateNewChat()
}

// ActiveID returns the active session pointer, possibly empty
func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// CurrentSession returns the session the active pointer refers to
func (s *SessionStore) CurrentSession() (ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(s.activeID)
	if idx < 0 {
		return ChatSession{}, false
	}
	return s.sessions[idx].Clone(), true
}

// Session looks up a session of the bound identity by id
func (s *SessionStore) Session(sessionID string) (ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(sessionID)
	if idx < 0 {
		return ChatSession{}, ErrSessionNotFound
	}
	return s.sessions[idx].Clone(), nil
}

// RecentSessions returns the first limit sessions, newest first.
// A non-positive limit means DefaultRecentLimit.
func (s *SessionStore) RecentSessions(limit int) []ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > len(s.sessions) {
		limit = len(s.sessions)
	}
	return cloneSessions(s.sessions[:limit])
}

// Sessions returns the whole collection, newest first
func (s *SessionStore) Sessions() []ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSessions(s.sessions)
}

// Len returns the number of sessions in the collection
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) indexOf(sessionID string) int {
	if sessionID == "" {
		return -1
	}
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			return i
		}
	}
	return -1
}

// persist writes the current state through; callers hold mu
func (s *SessionStore) persist() error {
	state := CollectionState{
		Sessions: s.sessions,
		ActiveID: s.activeID,
	}
	if err := s.persistence.Save(s.key, state); err != nil {
		LogError("Failed to persist sessions for %s: %v", s.key, err)
		return err
	}
	return nil
}

// newTokenID returns a time-ordered UUIDv7, falling back to a random UUID
func newTokenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
