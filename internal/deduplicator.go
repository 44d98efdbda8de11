package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Deduplicator merges session collections and removes duplicate sessions
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate keeps the first session for every id and for every message history.
// Two sessions with different ids but identical messages (role, content, timestamp)
// are copies of each other.
func (d *Deduplicator) Deduplicate(sessions []ChatSession) []ChatSession {
	seenIDs := make(map[string]bool, len(sessions))
	seenContent := make(map[string]bool, len(sessions))
	unique := make([]ChatSession, 0, len(sessions))

	for _, session := range sessions {
		if seenIDs[session.ID] {
			continue
		}
		if len(session.Messages) > 0 {
			hash := d.hashSessionContent(session)
			if seenContent[hash] {
				continue
			}
			seenContent[hash] = true
		}
		seenIDs[session.ID] = true
		unique = append(unique, session)
	}

	return unique
}

// Merge combines two collections into one, newest first by creation time. When both
// hold a session with the same id, the one updated last wins.
func (d *Deduplicator) Merge(current, incoming []ChatSession) []ChatSession {
	byID := make(map[string]int, len(current)+len(incoming))
	merged := make([]ChatSession, 0, len(current)+len(incoming))

	for _, session := range append(cloneSessions(current), cloneSessions(incoming)...) {
		if i, ok := byID[session.ID]; ok {
			if session.UpdatedAt.After(merged[i].UpdatedAt) {
				merged[i] = session
			}
			continue
		}
		byID[session.ID] = len(merged)
		merged = append(merged, session)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return d.Deduplicate(merged)
}

// hashSessionContent creates a content-based hash for a session
func (d *Deduplicator) hashSessionContent(session ChatSession) string {
	h := sha256.New()

	for _, msg := range session.Messages {
		h.Write([]byte(msg.Role))
		h.Write([]byte{0})
		h.Write([]byte(msg.Content))
		h.Write([]byte{0})
		h.Write([]byte(msg.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00")))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
