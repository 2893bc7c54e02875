package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/form"
)

var learnCmd = &cobra.Command{
	Use:   "learn <label> <value>",
	Short: "Remember the value you typed into a form field",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.Close()

		fieldType, _ := cmd.Flags().GetString("type")
		name, _ := cmd.Flags().GetString("name")
		field := form.Field{Type: fieldType, Label: args[0], Name: name}

		var job *form.Job
		if current, ok := e.assistant.CurrentJob(ctx); ok {
			job = &current.Job
		}

		printJSON(e.assistant.Learn(ctx, field, args[1], job))
	},
}

var recallCmd = &cobra.Command{
	Use:   "recall <label>",
	Short: "Print the value learned for a form field",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.Close()

		pattern, ok := e.assistant.Recall(ctx, form.Field{Label: args[0]})
		if !ok {
			e.logger.Info("nothing learned for field", zap.String("field", args[0]))
			return
		}
		printJSON(pattern)
	},
}

func init() {
	learnCmd.Flags().StringP("type", "t", "text", "field type")
	learnCmd.Flags().String("name", "", "field name attribute")

	rootCmd.AddCommand(learnCmd, recallCmd)
}
