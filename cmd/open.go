package cmd

import (
	"errors"
	"fmt"

	"github.com/iksnae/lawchat/internal"
	"github.com/spf13/cobra"
)

// openCmd represents the open command
var openCmd = &cobra.Command{
	Use:   "open <session-id>",
	Short: "Make a conversation the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		sessionID := args[0]
		session, lookupErr := store.Session(sessionID)
		if err := store.LoadChat(sessionID); err != nil {
			return fmt.Errorf("failed to save active conversation: %w", err)
		}

		if errors.Is(lookupErr, internal.ErrSessionNotFound) {
			internal.PrintWarning(fmt.Sprintf("No conversation %s in your history; nothing will be shown until you open another one", sessionID))
			return nil
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ Opened"), displayTitle(session.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
