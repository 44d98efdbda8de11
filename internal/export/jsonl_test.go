package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/lawchat/internal"
	"github.com/iksnae/lawchat/testutil"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		session *internal.ChatSession
		want    []string
		wantErr bool
	}{
		{
			name:    "empty session",
			session: internal.CreateTestSessionWithMessages("test1", []internal.Message{}),
			want:    []string{}, // No messages means no output lines
			wantErr: false,
		},
		{
			name:    "session with messages",
			session: internal.CreateTestSession("test2"),
			want: []string{
				`"role":"user"`,
				`"role":"assistant"`,
				`"session":"test2"`,
			},
			wantErr: false,
		},
		{
			name: "session with timestamp",
			session: internal.CreateTestSessionWithMessages("test3", []internal.Message{
				{
					ID:        "m1",
					Role:      internal.RoleUser,
					Content:   "Hello",
					Timestamp: time.Date(2023, 1, 1, 1, 0, 0, 0, time.FixedZone("WEST", 3600)),
				},
			}),
			want: []string{
				`"timestamp":"2023-01-01T00:00:00Z"`,
			},
			wantErr: false,
		},
		{
			name: "session without timestamp",
			session: internal.CreateTestSessionWithMessages("test4", []internal.Message{
				{
					ID:      "m1",
					Role:    internal.RoleUser,
					Content: "Hello",
				},
			}),
			want: []string{
				`"role":"user"`,
				`"content":"Hello"`,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONLExporter{}

			err := exporter.Export(tt.session, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("JSONLExporter.Export() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				output := buf.String()
				// For empty sessions, output should be empty
				if len(tt.session.Messages) == 0 && output != "" {
					t.Errorf("Empty session should produce empty output, got: %q", output)
					return
				}

				if len(tt.session.Messages) > 0 {
					lines := strings.Split(strings.TrimSpace(output), "\n")
					if len(lines) != len(tt.session.Messages) {
						t.Errorf("Export() wrote %d lines, want %d", len(lines), len(tt.session.Messages))
					}
					for i, line := range lines {
						var msg map[string]interface{}
						testutil.JSONUnmarshal(t, []byte(line), &msg)
						// Verify required fields
						for _, field := range []string{"session", "id", "role", "content"} {
							if _, ok := msg[field]; !ok {
								t.Errorf("Line %d missing %q field", i, field)
							}
						}
					}

					for _, wantStr := range tt.want {
						if !strings.Contains(output, wantStr) {
							t.Errorf("Output should contain %q", wantStr)
						}
					}
				}
			}
		})
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	exporter := &JSONLExporter{}
	if got := exporter.Extension(); got != "jsonl" {
		t.Errorf("JSONLExporter.Extension() = %v, want jsonl", got)
	}
}

func TestJSONLExporter_OmitsZeroTimestamp(t *testing.T) {
	var buf bytes.Buffer
	session := internal.CreateTestSessionWithMessages("s", []internal.Message{
		{ID: "m1", Role: internal.RoleAssistant, Content: "x"},
	})
	if err := (&JSONLExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if strings.Contains(buf.String(), "timestamp") {
		t.Errorf("zero timestamp should be omitted, got %q", buf.String())
	}
}
