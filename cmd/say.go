package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/lawchat/internal"
	"github.com/spf13/cobra"
)

// sayCmd represents the say command
var sayCmd = &cobra.Command{
	Use:   "say <text...>",
	Short: "Add a message to the active conversation without asking the assistant",
	Long: `Append a message of yours to the active conversation without sending it to the
assistant. A conversation is started if there is none.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return internal.ErrEmptyQuestion
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		sessionID, err := store.EnsureSession()
		if err != nil {
			return fmt.Errorf("failed to start conversation: %w", err)
		}
		if err := store.AddMessage(sessionID, internal.NewUserMessage(text)); err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}

		session, err := store.Session(sessionID)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ Added to"), displayTitle(session.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sayCmd)
}
