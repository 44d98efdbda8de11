package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/lawchat/internal"
	"github.com/spf13/cobra"
)

var (
	listLimit int
	listAll   bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your recent conversations",
	Long: `List the conversations stored for the current identity, newest first.

The active conversation is marked with *. Regular users keep a single conversation;
administrators see their full history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		limit := listLimit
		if listAll {
			limit = store.Len()
		} else if !cmd.Flags().Changed("limit") {
			limit = cfg.Chat.RecentLimit
		}

		displaySessions(cmd.OutOrStdout(), store.RecentSessions(limit), store.ActiveID(), store.Len(), time.Now())
		return nil
	},
}

func displaySessions(out io.Writer, sessions []internal.ChatSession, activeID string, total int, now time.Time) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No conversations yet"))
		_, _ = fmt.Fprintln(out, idStyle.Render("💡 Tip: Start one with `lawchat new` or `lawchat ask <question>`"))
		return
	}

	header := fmt.Sprintf("📋 Showing %d of %d conversation(s)", len(sessions), total)
	_, _ = fmt.Fprintln(out, headerStyle.Render(header))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Updated")+"\t")

	for _, session := range sessions {
		marker := " "
		if session.ID == activeID {
			marker = activeStyle.Render("*")
		}

		title := displayTitle(session.Title)
		if runes := []rune(title); len(runes) > 50 {
			title = string(runes[:47]) + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			marker,
			idStyle.Render(session.ID),
			lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Render(title),
			countStyle.Render(strconv.Itoa(len(session.Messages))),
			dateStyle.Render(formatRelativeTime(session.UpdatedAt, now)),
		)
	}

	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the ID with `lawchat show <id>` or `lawchat open <id>`"))
}

// formatRelativeTime renders t relative to now the way the list table shows dates
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}

	t = t.Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour && t.YearDay() == now.Local().YearDay():
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

// displayTitle falls back to the default title for blank titles
func displayTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return internal.DefaultTitle
	}
	return title
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 10, "Maximum number of conversations to show (default from config)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Show every conversation")
}
