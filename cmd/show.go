package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/lawchat/internal"
	"github.com/spf13/cobra"
)

var (
	limit int
	since string
)

var errNoActiveSession = errors.New("no active conversation (start one with `lawchat new` or pass a session ID)")

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show the messages of a conversation",
	Long: `Display the messages of a conversation.

Without a session ID the active conversation is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		var session internal.ChatSession
		if len(args) == 1 {
			session, err = store.Session(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s (use 'lawchat list' to see your conversations)", err, args[0])
			}
		} else {
			var ok bool
			session, ok = store.CurrentSession()
			if !ok {
				return errNoActiveSession
			}
		}

		messages, err := filterMessages(session.Messages, since, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		displaySessionHeader(out, session, session.ID == store.ActiveID())

		total := len(messages.shown) + messages.remaining
		for i, msg := range messages.shown {
			displayMessage(out, i+1, msg, total)
		}

		// Show remaining count if limit was applied
		if messages.remaining > 0 {
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", messages.remaining)))
		}

		return nil
	},
}

type messageWindow struct {
	shown     []internal.Message
	remaining int
}

// filterMessages applies --since (RFC3339) and then --limit to msgs
func filterMessages(msgs []internal.Message, sinceValue string, max int) (messageWindow, error) {
	selected := msgs
	if sinceValue != "" {
		sinceTime, err := time.Parse(time.RFC3339, sinceValue)
		if err != nil {
			return messageWindow{}, fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
		}
		selected = make([]internal.Message, 0, len(msgs))
		for _, msg := range msgs {
			if !msg.Timestamp.Before(sinceTime) {
				selected = append(selected, msg)
			}
		}
	}

	if max > 0 && max < len(selected) {
		return messageWindow{shown: selected[:max], remaining: len(selected) - max}, nil
	}
	return messageWindow{shown: selected}, nil
}

func displaySessionHeader(out io.Writer, session internal.ChatSession, active bool) {
	title := fmt.Sprintf("💬 %s", displayTitle(session.Title))
	if active {
		title += " (active)"
	}
	_, _ = fmt.Fprintln(out, sessionHeaderStyle.Render(title))

	metaParts := []string{fmt.Sprintf("ID: %s", session.ID)}
	if !session.CreatedAt.IsZero() {
		metaParts = append(metaParts, fmt.Sprintf("Created: %s", session.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	metaParts = append(metaParts, fmt.Sprintf("Messages: %d", len(session.Messages)))
	_, _ = fmt.Fprintln(out, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	_, _ = fmt.Fprintln(out)
}

func displayMessage(out io.Writer, index int, msg internal.Message, total int) {
	var actorStyle lipgloss.Style
	var actorLabel string

	switch msg.Role {
	case internal.RoleUser:
		actorStyle = userMessageStyle
		actorLabel = "👤 You"
	case internal.RoleAssistant:
		actorStyle = assistantMessageStyle
		actorLabel = "⚖️  Assistant"
	default:
		actorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		actorLabel = fmt.Sprintf("🔧 %s", msg.Role)
	}

	header := actorStyle.Render(actorLabel) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if !msg.Timestamp.IsZero() {
		header += " " + timestampStyle.Render(msg.Timestamp.Local().Format("15:04:05"))
	}
	_, _ = fmt.Fprintln(out, header)

	content := strings.TrimSpace(msg.Content)
	if content != "" {
		_, _ = fmt.Fprintln(out, messageContentStyle.Render(wrapText(content, 80)))
	} else {
		_, _ = fmt.Fprintln(out, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	}

	_, _ = fmt.Fprintln(out)
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if utf8.RuneCountInString(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			switch {
			case currentLine == "":
				currentLine = word
			case utf8.RuneCountInString(currentLine)+utf8.RuneCountInString(word)+1 > width:
				wrapped = append(wrapped, currentLine)
				currentLine = word
			default:
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().StringVar(&since, "since", "", "Show messages since timestamp (RFC3339)")
}
