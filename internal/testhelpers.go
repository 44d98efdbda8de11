package internal

import (
	"fmt"
	"sync"
	"time"
)

// TestEpoch is the first instant reported by NewTestClock
var TestEpoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// NewTestClock returns a clock that starts at TestEpoch and advances one second per call
func NewTestClock() func() time.Time {
	var mu sync.Mutex
	next := TestEpoch
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

// NewTestIDs returns an id generator yielding prefix-1, prefix-2, ...
func NewTestIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// NewTestStore creates a store over an in-memory medium with a deterministic clock and ids
func NewTestStore(identity Identity) (*SessionStore, *MemoryMedium) {
	medium := NewMemoryMedium()
	store := NewSessionStore(NewKVPersistence(medium), identity, StoreOptions{
		Now:   NewTestClock(),
		NewID: NewTestIDs("id"),
	})
	return store, medium
}

// CreateTestSession creates a test session with sample data
func CreateTestSession(id string) *ChatSession {
	return &ChatSession{
		ID:    id,
		Title: "What is the minimum wage in Morocco?",
		Messages: []Message{
			{
				ID:        id + "-m1",
				Content:   DefaultWelcomeMessage,
				Role:      RoleAssistant,
				Timestamp: TestEpoch,
			},
			{
				ID:        id + "-m2",
				Content:   "What is the minimum wage in Morocco?",
				Role:      RoleUser,
				Timestamp: TestEpoch.Add(time.Minute),
			},
			{
				ID:        id + "-m3",
				Content:   "The statutory minimum wage is set by decree under the Labour Code.",
				Role:      RoleAssistant,
				Timestamp: TestEpoch.Add(2 * time.Minute),
			},
		},
		CreatedAt: TestEpoch,
		UpdatedAt: TestEpoch.Add(2 * time.Minute),
	}
}

// CreateTestSessionWithMessages creates a test session with custom messages
func CreateTestSessionWithMessages(id string, messages []Message) *ChatSession {
	return &ChatSession{
		ID:        id,
		Title:     DefaultTitle,
		Messages:  messages,
		CreatedAt: TestEpoch,
		UpdatedAt: TestEpoch,
	}
}
