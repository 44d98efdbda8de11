package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new conversation",
	Long: `Start a new conversation and make it the active one.

Administrators keep their earlier conversations. For everyone else the new
conversation replaces the previous one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		replaced := store.Len()
		id, err := store.CreateNewChat()
		if err != nil {
			return fmt.Errorf("failed to save new conversation: %w", err)
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Started new conversation"), idStyle.Render(id))
		if replaced > 0 && !store.Identity().IsAdmin() {
			_, _ = fmt.Fprintln(out, idStyle.Render("Your previous conversation was replaced."))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
