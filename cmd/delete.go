package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a conversation (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		sessionID := args[0]
		session, err := store.Session(sessionID)
		if err != nil {
			return fmt.Errorf("%w: %s", err, sessionID)
		}
		if err := store.DeleteChat(sessionID); err != nil {
			return fmt.Errorf("failed to save deletion: %w", err)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("🗑  Deleted"), displayTitle(session.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
