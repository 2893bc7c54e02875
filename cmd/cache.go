package cmd

import (
	"context"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage remembered answers",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all remembered answers",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.Close()

		printJSON(e.assistant.Cache().Entries(ctx))
	},
}

var cacheLookupCmd = &cobra.Command{
	Use:   "lookup <question>",
	Short: "Find a remembered answer for a question",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.Close()

		match, ok := e.assistant.Cache().Match(ctx, strings.Join(args, " "))
		if !ok {
			e.logger.Info("no remembered answer")
			return
		}
		printJSON(match)
	},
}

var cacheStoreCmd = &cobra.Command{
	Use:   "store <question> <answer>",
	Short: "Remember an answer for a question",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.Close()

		printJSON(e.assistant.SaveAnswer(ctx, args[0], args[1]))
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all remembered answers",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.Close()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirm := promptui.Prompt{Label: "Forget all remembered answers", IsConfirm: true}
			if _, err := confirm.Run(); err != nil {
				e.logger.Info("exiting", zap.String("reason", "not confirmed"))
				return
			}
		}

		e.assistant.Cache().Clear(ctx)
		e.logger.Info("question cache cleared")
	},
}

func init() {
	cacheClearCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	cacheCmd.AddCommand(cacheListCmd, cacheLookupCmd, cacheStoreCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
