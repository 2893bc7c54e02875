package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and websocket API used by the browser extension",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default is "+server.DefaultAddr+")")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve(parent context.Context) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := setup(ctx)
	defer e.Close()

	e.logger.Info("starting the jobapply server",
		zap.String("version", version),
		zap.String("addr", e.config.Server.Addr),
	)

	if e.gateway != nil && !e.gateway.Available(ctx) {
		e.logger.Warn("inference service is not reachable, AI answers will fail until it is started",
			zap.String("provider", e.gateway.Provider()),
			zap.String("hint", "ollama serve && ollama pull "+e.gateway.Model()),
		)
	}

	srv := server.New(e.assistant, e.config.Server, e.logger.Named("server"))
	if err := srv.Run(ctx); err != nil {
		e.logger.Fatal("serving", zap.Error(err))
	}
}
