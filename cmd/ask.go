package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/lawchat/internal"
	"github.com/spf13/cobra"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask the law assistant a question",
	Long: `Send a question to the law assistant and record both the question and the
answer in the active conversation. A conversation is started if there is none.

If the assistant cannot be reached, the failure is recorded in the conversation
as the assistant's reply.`,
	Example: `  lawchat ask "What notice period applies when resigning?"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		if strings.TrimSpace(question) == "" {
			return internal.ErrEmptyQuestion
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		client := newAPIClient()
		internal.LogDebug("Asking %s", client.BaseURL())

		var reply internal.Reply
		err = internal.ShowProgress(cmd.Context(), "Consulting the law assistant", func() error {
			var askErr error
			reply, askErr = internal.AskAndRecord(cmd.Context(), store, client, question)
			return askErr
		})
		if err != nil {
			return fmt.Errorf("failed to record conversation: %w", err)
		}

		session, err := store.Session(reply.SessionID)
		if err != nil {
			return err
		}
		displayMessage(cmd.OutOrStdout(), len(session.Messages), reply.Message, len(session.Messages))
		if reply.Failed {
			internal.PrintWarning("The assistant could not answer; check --api-url or try again later")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
