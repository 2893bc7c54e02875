package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or end the current application conversation",
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current conversation",
	Run: func(_ *cobra.Command, _ []string) {
		e := setup(context.Background())
		defer e.Close()

		printJSON(e.assistant.ConversationStatus())
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "End the current conversation",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.Close()

		e.assistant.ClearConversation(ctx)
		e.logger.Info("conversation cleared")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the resolution tiers, model availability and the current job",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.Close()

		printJSON(e.assistant.Status(ctx))
	},
}

func init() {
	sessionCmd.AddCommand(sessionStatusCmd, sessionClearCmd)
	rootCmd.AddCommand(sessionCmd, statusCmd)
}
