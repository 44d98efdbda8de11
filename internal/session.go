package internal

import (
	"fmt"
	"strings"
	"time"
)

// MessageRole identifies who authored a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

const (
	// DefaultTitle is the title of a session until its first user message arrives
	DefaultTitle = "New Chat"
	// TitleMaxRunes bounds a derived title before the ellipsis marker is added
	TitleMaxRunes = 50
	// TitleEllipsis marks a truncated title
	TitleEllipsis = "..."
	// DefaultRecentLimit is the number of sessions RecentSessions returns for a non-positive limit
	DefaultRecentLimit = 10
)

// DefaultWelcomeMessage seeds every new session
const DefaultWelcomeMessage = "Welcome! I'm your AI Law Assistant for Moroccan law. Ask me anything about legal matters, regulations, or specific laws in Morocco."

// Valid reports whether r is one of the known message roles
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// UnmarshalText rejects roles outside the closed user/assistant set
func (r *MessageRole) UnmarshalText(text []byte) error {
	role := MessageRole(text)
	if !role.Valid() {
		return fmt.Errorf("unknown message role %q", string(text))
	}
	*r = role
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (r MessageRole) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

// Message represents one conversational turn
type Message struct {
	ID        string      `json:"id" yaml:"id"`
	Content   string      `json:"content" yaml:"content"`
	Role      MessageRole `json:"role" yaml:"role"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
}

// ChatSession represents one conversation thread
type ChatSession struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Messages  []Message `json:"messages" yaml:"messages"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// NewUserMessage builds a user message; ID and timestamp are filled in by the store
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds an assistant message; ID and timestamp are filled in by the store
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Clone returns a deep copy of the session
func (s ChatSession) Clone() ChatSession {
	clone := s
	if s.Messages != nil {
		clone.Messages = make([]Message, len(s.Messages))
		copy(clone.Messages, s.Messages)
	}
	return clone
}

// HasDefaultTitle reports whether the title was never derived
func (s ChatSession) HasDefaultTitle() bool {
	return s.Title == DefaultTitle
}

// UserMessageCount returns the number of user-authored messages
func (s ChatSession) UserMessageCount() int {
	count := 0
	for _, msg := range s.Messages {
		if msg.Role == RoleUser {
			count++
		}
	}
	return count
}

// DeriveTitle turns the first user message into a session title.
// Content longer than TitleMaxRunes is cut and suffixed with TitleEllipsis.
// Blank content keeps the default title.
func DeriveTitle(content string) string {
	if strings.TrimSpace(content) == "" {
		return DefaultTitle
	}
	runes := []rune(content)
	if len(runes) <= TitleMaxRunes {
		return content
	}
	return string(runes[:TitleMaxRunes]) + TitleEllipsis
}

func cloneSessions(sessions []ChatSession) []ChatSession {
	out := make([]ChatSession, len(sessions))
	for i, s := range sessions {
		out[i] = s.Clone()
	}
	return out
}
