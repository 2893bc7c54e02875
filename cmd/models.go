package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/ai"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models offered by the inference service",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		e := setup(ctx)
		defer e.Close()

		if e.gateway == nil {
			e.logger.Fatal("no inference gateway configured", zap.String("hint", "check the ai section of the configuration file"))
		}

		models, err := e.gateway.Models(ctx)
		if err != nil {
			e.logger.Fatal("listing models",
				zap.Error(err),
				zap.String("hint", ai.Hint(err, e.gateway.Provider(), e.gateway.Model())),
			)
		}

		e.logger.Info("available models", zap.String("provider", e.gateway.Provider()), zap.Int("count", len(models)))
		printJSON(models)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
