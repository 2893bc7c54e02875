package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/form"
)

var fitCmd = &cobra.Command{
	Use:   "fit <job-url>",
	Short: "Analyze how well your resume fits a job and make it the current job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fit(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(fitCmd)

	fitCmd.Flags().String("title", "", "job title")
	fitCmd.Flags().String("company", "", "company name")
	fitCmd.Flags().String("description", "", "job description text")
	fitCmd.Flags().StringP("description-file", "f", "", "file with the job description")
	fitCmd.Flags().Bool("strict", false, "fail instead of falling back to a neutral score")
}

func fit(cmd *cobra.Command, url string) {
	ctx := context.Background()

	e := setup(ctx)
	defer e.Close()

	job := form.Job{URL: url}
	job.JobTitle, _ = cmd.Flags().GetString("title")
	job.Company, _ = cmd.Flags().GetString("company")
	job.Description, _ = cmd.Flags().GetString("description")

	if file, _ := cmd.Flags().GetString("description-file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			e.logger.Fatal("reading job description", zap.Error(err))
		}
		job.Description = string(data)
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		result, err := e.assistant.AnalyzeFit(ctx, job)
		if err != nil {
			e.logger.Fatal("analyzing job fit",
				zap.Error(err),
				zap.String("hint", e.assistant.FitHint(err)),
			)
		}
		printJSON(result)
		return
	}

	printJSON(e.assistant.TrackJob(ctx, job))
}
