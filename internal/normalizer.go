package internal

import (
	"strings"
	"time"
)

// Normalizer repairs session collections read from outside the store, such as
// backup snapshots, so they look like collections the store itself writes
type Normalizer struct {
	newID func() string
}

// NewNormalizer creates a new Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{newID: newTokenID}
}

// NormalizeSessions returns a normalized copy of sessions. The input is not modified.
func (n *Normalizer) NormalizeSessions(sessions []ChatSession) []ChatSession {
	out := make([]ChatSession, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, n.NormalizeSession(session))
	}
	return out
}

// NormalizeSession fills in what a partial session is missing:
//   - a blank id or message id gets a fresh token
//   - a blank title is derived from the first user message, or DefaultTitle
//   - missing timestamps fall back to the neighbouring message timestamps
func (n *Normalizer) NormalizeSession(session ChatSession) ChatSession {
	s := session.Clone()
	if s.Messages == nil {
		s.Messages = []Message{}
	}

	if strings.TrimSpace(s.ID) == "" {
		s.ID = n.newID()
	}
	for i := range s.Messages {
		if strings.TrimSpace(s.Messages[i].ID) == "" {
			s.Messages[i].ID = n.newID()
		}
	}

	if strings.TrimSpace(s.Title) == "" {
		s.Title = n.normalizeTitle(s.Messages)
	}

	first, last := messageTimeRange(s.Messages)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = first
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = last
	}
	if s.UpdatedAt.IsZero() || s.UpdatedAt.Before(s.CreatedAt) {
		s.UpdatedAt = s.CreatedAt
	}
	return s
}

func (n *Normalizer) normalizeTitle(messages []Message) string {
	for _, msg := range messages {
		if msg.Role == RoleUser {
			return DeriveTitle(msg.Content)
		}
	}
	return DefaultTitle
}

// messageTimeRange returns the earliest and latest non-zero message timestamps
func messageTimeRange(messages []Message) (first, last time.Time) {
	for _, msg := range messages {
		if msg.Timestamp.IsZero() {
			continue
		}
		if first.IsZero() || msg.Timestamp.Before(first) {
			first = msg.Timestamp
		}
		if msg.Timestamp.After(last) {
			last = msg.Timestamp
		}
	}
	return first, last
}
