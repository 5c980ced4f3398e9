package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"rulegate/internal/config"
	"rulegate/internal/pkg/logger"
	"rulegate/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the rules API server",
	Long:  `Start the HTTP server and begin proxying rule and category requests to the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		globalLogger, err := logger.NewWithFormat(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer globalLogger.Sync()

		globalLogger.Info("configuration loaded",
			zap.String("store_url", cfg.Store.URL),
			zap.Bool("store_key_set", cfg.Store.Key != ""),
			zap.String("addr", cfg.Server.Addr()),
			zap.String("export_chooser", cfg.Export.Chooser),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.NewHTTPServer(cfg, globalLogger)
		return srv.Start(ctx)
	},
}

func SetupServeCmd() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8000, "Server port")
	serveCmd.Flags().StringP("host", "H", "0.0.0.0", "Server host")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}
