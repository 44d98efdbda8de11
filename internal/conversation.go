package internal

import (
	"context"
	"fmt"
	"strings"
)

// Citation points at the document page an answer was drawn from
type Citation struct {
	DocName string `json:"doc_name" yaml:"doc_name"`
	Page    int    `json:"page" yaml:"page"`
}

// Answer is what the question-answering backend returns for a question
type Answer struct {
	Text       string     `json:"answer" yaml:"answer"`
	Sources    []Citation `json:"sources" yaml:"sources"`
	Disclaimer string     `json:"disclaimer,omitempty" yaml:"disclaimer,omitempty"`
}

// Answerer answers legal questions
type Answerer interface {
	Ask(ctx context.Context, question string) (*Answer, error)
}

// Reply is the outcome of one question turn
type Reply struct {
	SessionID string
	Message   Message
	Answer    *Answer // nil when Failed
	Failed    bool
	Err       error
}

// AnswerFailurePrefix starts the assistant message recorded when the backend fails
const AnswerFailurePrefix = "Sorry, I couldn't get an answer: "

// AskAndRecord runs one question turn against the store: it makes sure a session is
// active, records the question, asks answerer and records the answer. A backend
// failure is recorded as an assistant message and reported through Reply.Failed, not
// as an error; the returned error is reserved for an empty question or a failed write.
func AskAndRecord(ctx context.Context, store *SessionStore, answerer Answerer, question string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}

	sessionID, err := store.EnsureSession()
	if err != nil {
		return Reply{}, err
	}
	if err := store.AddMessage(sessionID, NewUserMessage(question)); err != nil {
		return Reply{}, err
	}

	reply := Reply{SessionID: sessionID}
	answer, askErr := answerer.Ask(ctx, question)
	if askErr != nil {
		LogWarn("Question failed for session %s: %v", sessionID, askErr)
		reply.Failed = true
		reply.Err = askErr
		reply.Message = NewAssistantMessage(AnswerFailurePrefix + askErr.Error())
	} else {
		reply.Answer = answer
		reply.Message = NewAssistantMessage(FormatAnswer(answer))
	}

	if err := store.AddMessage(sessionID, reply.Message); err != nil {
		return reply, err
	}
	if session, err := store.Session(sessionID); err == nil && len(session.Messages) > 0 {
		reply.Message = session.Messages[len(session.Messages)-1]
	}
	return reply, nil
}

// FormatAnswer renders an answer as the text of an assistant message
func FormatAnswer(answer *Answer) string {
	if answer == nil {
		return ""
	}

	var parts []string
	if text := strings.TrimSpace(answer.Text); text != "" {
		parts = append(parts, text)
	}

	if len(answer.Sources) > 0 {
		var b strings.Builder
		b.WriteString("Sources:")
		for _, src := range answer.Sources {
			fmt.Fprintf(&b, "\n- %s (page %d)", src.DocName, src.Page)
		}
		parts = append(parts, b.String())
	}

	if disclaimer := strings.TrimSpace(answer.Disclaimer); disclaimer != "" {
		parts = append(parts, disclaimer)
	}
	return strings.Join(parts, "\n\n")
}
