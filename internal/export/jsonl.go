package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/lawchat/internal"
)

// jsonlLine is one message as written by JSONLExporter
type jsonlLine struct {
	Session   string               `json:"session"`
	ID        string               `json:"id"`
	Role      internal.MessageRole `json:"role"`
	Content   string               `json:"content"`
	Timestamp string               `json:"timestamp,omitempty"`
}

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		line := jsonlLine{
			Session: session.ID,
			ID:      msg.ID,
			Role:    msg.Role,
			Content: msg.Content,
		}
		if !msg.Timestamp.IsZero() {
			line.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
		}

		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
