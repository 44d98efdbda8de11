package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/lawchat/internal"
)

func TestShowCommand(t *testing.T) {
	isolateEnv(t)
	args := sqliteArgs(t)

	_, err := runCLI(t, withArgs(args, "show")...)
	assert.ErrorIs(t, err, errNoActiveSession)

	_, err = runCLI(t, withArgs(args, "show", "missing-id")...)
	assert.ErrorIs(t, err, internal.ErrSessionNotFound)

	_, err = runCLI(t, withArgs(args, "say", "Can", "my", "landlord", "raise", "the", "rent?")...)
	require.NoError(t, err)

	out, err := runCLI(t, withArgs(args, "show")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Can my landlord raise the rent? (active)")
	assert.Contains(t, out, "Messages: 2")
	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "Welcome! I'm your AI Law Assistant")
	assert.Contains(t, out, "👤 You")
}

func TestShowCommand_LimitAndSince(t *testing.T) {
	isolateEnv(t)
	args := sqliteArgs(t)

	for _, text := range []string{"first", "second", "third"} {
		_, err := runCLI(t, withArgs(args, "say", text)...)
		require.NoError(t, err)
	}

	out, err := runCLI(t, withArgs(args, "show", "--limit", "2")...)
	require.NoError(t, err)
	assert.Contains(t, out, "[2/4]")
	assert.Contains(t, out, "... (2 more message(s))")
	assert.NotContains(t, out, "third")

	_, err = runCLI(t, withArgs(args, "show", "--since", "yesterday")...)
	assert.Error(t, err)

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	out, err = runCLI(t, withArgs(args, "show", "--since", future)...)
	require.NoError(t, err)
	assert.NotContains(t, out, "[1/")
}

func TestFilterMessages(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	msgs := []internal.Message{
		{ID: "m1", Timestamp: base},
		{ID: "m2", Timestamp: base.Add(time.Minute)},
		{ID: "m3", Timestamp: base.Add(2 * time.Minute)},
	}

	tests := []struct {
		name          string
		since         string
		max           int
		wantIDs       []string
		wantRemaining int
		wantErr       bool
	}{
		{name: "all", wantIDs: []string{"m1", "m2", "m3"}},
		{name: "limit", max: 2, wantIDs: []string{"m1", "m2"}, wantRemaining: 1},
		{name: "limit above length", max: 10, wantIDs: []string{"m1", "m2", "m3"}},
		{name: "since is inclusive", since: "2025-03-01T09:01:00Z", wantIDs: []string{"m2", "m3"}},
		{name: "since then limit", since: "2025-03-01T09:00:00Z", max: 1, wantIDs: []string{"m1"}, wantRemaining: 2},
		{name: "since in other zone", since: "2025-03-01T10:02:00+01:00", wantIDs: []string{"m3"}},
		{name: "invalid since", since: "2025-03-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filterMessages(msgs, tt.since, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("filterMessages() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			ids := make([]string, 0, len(got.shown))
			for _, m := range got.shown {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantRemaining, got.remaining)
		})
	}
}

func TestDisplaySessionHeader(t *testing.T) {
	session := *internal.CreateTestSession("s-header")

	var buf bytes.Buffer
	displaySessionHeader(&buf, session, false)
	assert.Contains(t, buf.String(), "What is the minimum wage in Morocco?")
	assert.Contains(t, buf.String(), "ID: s-header")
	assert.Contains(t, buf.String(), "Messages: 3")
	assert.NotContains(t, buf.String(), "(active)")

	buf.Reset()
	displaySessionHeader(&buf, internal.ChatSession{ID: "s-empty"}, true)
	assert.Contains(t, buf.String(), internal.DefaultTitle+" (active)")
	assert.NotContains(t, buf.String(), "Created:")
}

func TestDisplayMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  internal.Message
		want []string
	}{
		{
			name: "user message",
			msg:  internal.Message{Role: internal.RoleUser, Content: "Hello, world!", Timestamp: time.Now()},
			want: []string{"👤 You", "[1/2]", "Hello, world!"},
		},
		{
			name: "assistant message",
			msg:  internal.Message{Role: internal.RoleAssistant, Content: "Hi there!"},
			want: []string{"Assistant", "Hi there!"},
		},
		{
			name: "empty message",
			msg:  internal.Message{Role: internal.RoleUser, Content: "   "},
			want: []string{"(empty message)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			displayMessage(&buf, 1, tt.msg, 2)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{
			name:  "short text",
			text:  "Hello world",
			width: 80,
			want:  "Hello world",
		},
		{
			name:  "long text",
			text:  "This is a very long line of text that should be wrapped",
			width: 20,
			want:  "This is a very long\nline of text that\nshould be wrapped",
		},
		{
			name:  "text with newlines",
			text:  "Line 1\nLine 2",
			width: 80,
			want:  "Line 1\nLine 2",
		},
		{
			name:  "empty text",
			text:  "",
			width: 80,
			want:  "",
		},
		{
			name:  "single long word",
			text:  "supercalifragilisticexpialidocious is long",
			width: 10,
			want:  "supercalifragilisticexpialidocious\nis long",
		},
		{
			name:  "multibyte counts runes",
			text:  "éééé éééé",
			width: 9,
			want:  "éééé éééé",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.width); got != tt.want {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapText_NoLineExceedsWidth(t *testing.T) {
	text := strings.Repeat("droit du travail ", 20)
	for _, line := range strings.Split(wrapText(text, 30), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 30)
	}
}
