package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeSessions serializes a session collection to its persisted text form.
// Timestamps are written as RFC 3339 with full precision.
func EncodeSessions(sessions []ChatSession) (string, error) {
	if sessions == nil {
		sessions = []ChatSession{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeSessions parses the persisted text form of a session collection.
// Blank input decodes to an empty collection; any other malformed input is an error,
// including messages whose role is outside user/assistant.
func DecodeSessions(data string) ([]ChatSession, error) {
	if strings.TrimSpace(data) == "" {
		return []ChatSession{}, nil
	}

	var sessions []ChatSession
	if err := json.Unmarshal([]byte(data), &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		// a literal "null"
		sessions = []ChatSession{}
	}
	for i := range sessions {
		if sessions[i].Messages == nil {
			sessions[i].Messages = []Message{}
		}
		for _, msg := range sessions[i].Messages {
			if !msg.Role.Valid() {
				return nil, fmt.Errorf("session %s: message %s has invalid role %q", sessions[i].ID, msg.ID, msg.Role)
			}
		}
	}
	return sessions, nil
}
