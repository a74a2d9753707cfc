package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("Command failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "renthunt",
		Short:         "Telegram bot that searches rental listings for subscribers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("migrations", "file://migrations", "Migrations source URL")

	cmd.AddCommand(newServeCmd(logger))
	cmd.AddCommand(newSweepCmd(logger))
	cmd.AddCommand(newMigrateCmd(logger))

	return cmd
}

func newServeCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the periodic sweep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, _ := cmd.Flags().GetString("migrations")
			return serve(cmd.Context(), source, logger)
		},
	}
}

func newSweepCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one subscription sweep and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sweepOnce(cmd.Context(), logger)
		},
	}
}

func newMigrateCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, _ := cmd.Flags().GetString("migrations")
			return migrateOnly(source, logger)
		},
	}
}
