package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/resolver"
)

const (
	PromptYes  = "Yes"
	PromptNo   = "No"
	PromptEdit = "Edit the answer"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <question>",
	Short: "Resolve an answer for a form question",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resolve(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("type", "t", "text", "field type (text, textarea, radio, checkbox, select)")
	resolveCmd.Flags().String("name", "", "field name attribute")
	resolveCmd.Flags().Int("max-length", 0, "field max length")
	resolveCmd.Flags().StringSliceP("option", "o", nil, "choice option, repeatable")
	resolveCmd.Flags().BoolP("confirm", "c", false, "ask whether to remember the answer")
}

func resolve(cmd *cobra.Command, question string) {
	ctx := context.Background()

	e := setup(ctx)
	defer e.Close()

	field := fieldFromFlags(cmd, question)

	answer, err := e.assistant.Resolve(ctx, resolver.Question{Text: question, Field: field})
	if err != nil {
		e.logger.Fatal("resolving answer",
			zap.Error(err),
			zap.String("hint", e.assistant.Hint(err)),
		)
	}

	printJSON(answer)

	if confirm, _ := cmd.Flags().GetBool("confirm"); !confirm {
		return
	}

	value, save, err := confirmAnswer(answer)
	if err != nil {
		e.logger.Fatal("exiting", zap.Error(err))
	}
	if !save {
		e.logger.Info("answer was not saved")
		return
	}

	entry := e.assistant.SaveAnswer(ctx, question, value)
	e.logger.Info("saved answer to the question cache", zap.String("question", entry.Question))
}

func fieldFromFlags(cmd *cobra.Command, question string) form.Field {
	fieldType, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")
	maxLength, _ := cmd.Flags().GetInt("max-length")
	options, _ := cmd.Flags().GetStringSlice("option")

	field := form.Field{
		Type:      fieldType,
		Label:     question,
		Name:      name,
		MaxLength: maxLength,
	}
	for _, o := range options {
		field.Options = append(field.Options, form.Option{Value: o, Text: o})
	}
	return field
}

// confirmAnswer asks the user to keep, edit or drop the answer.
func confirmAnswer(answer resolver.Answer) (string, bool, error) {
	if answer.Value != nil {
		choice := promptui.Select{
			Label: fmt.Sprintf("Remember %q?", *answer.Value),
			Items: []string{PromptYes, PromptEdit, PromptNo},
		}

		_, action, err := choice.Run()
		if err != nil {
			return "", false, err
		}

		switch action {
		case PromptYes:
			return *answer.Value, true, nil
		case PromptNo:
			return "", false, nil
		}
	}

	input := promptui.Prompt{
		Label: "Your answer",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("answer must not be empty")
			}
			return nil
		},
	}
	if answer.Value != nil {
		input.Default = *answer.Value
	}

	value, err := input.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", false, nil
		}
		return "", false, err
	}

	return strings.TrimSpace(value), true, nil
}
