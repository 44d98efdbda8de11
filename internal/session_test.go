package internal

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTitle(t *testing.T) {
	fifty := strings.Repeat("a", 50)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "Can I be fired without notice?", "Can I be fired without notice?"},
		{"exactly fifty", fifty, fifty},
		{"fifty one", fifty + "b", fifty + "..."},
		{"blank keeps default", "   ", DefaultTitle},
		{"empty keeps default", "", DefaultTitle},
		{"arabic counted in runes", strings.Repeat("ق", 60), strings.Repeat("ق", 50) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.content)
			if got != tt.want {
				t.Errorf("DeriveTitle() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("DeriveTitle() produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestMessageRole(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, MessageRole("system").Valid())
	assert.False(t, MessageRole("").Valid())

	var msg Message
	err := json.Unmarshal([]byte(`{"id":"1","content":"x","role":"system"}`), &msg)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","content":"x","role":"user"}`), &msg))
	assert.Equal(t, RoleUser, msg.Role)
}

func TestChatSession_Clone(t *testing.T) {
	original := CreateTestSession("s1")
	clone := original.Clone()

	clone.Messages[0].Content = "changed"
	clone.Title = "changed"

	assert.Equal(t, DefaultWelcomeMessage, original.Messages[0].Content)
	assert.NotEqual(t, "changed", original.Title)
}

func TestChatSession_Helpers(t *testing.T) {
	session := CreateTestSession("s1")
	assert.False(t, session.HasDefaultTitle())
	assert.Equal(t, 1, session.UserMessageCount())

	fresh := CreateTestSessionWithMessages("s2", nil)
	assert.True(t, fresh.HasDefaultTitle())
	assert.Equal(t, 0, fresh.UserMessageCount())
}

func TestMessageConstructors(t *testing.T) {
	user := NewUserMessage("hello")
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, "hello", user.Content)
	assert.Empty(t, user.ID)
	assert.True(t, user.Timestamp.IsZero())

	assistant := NewAssistantMessage("hi")
	assert.Equal(t, RoleAssistant, assistant.Role)
}
