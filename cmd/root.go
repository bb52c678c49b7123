package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/capitals/internal/config"
	"github.com/abhisek/capitals/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "capitals",
	Short: "US state capitals quiz",
	Long:  "Capitals quizzes you on US state capitals, six questions at a time, and keeps your history.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite file path or postgres DSN (overrides CAPITALS_DB env var)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite or postgres (overrides CAPITALS_DB_DRIVER)")
	rootCmd.PersistentFlags().String("csv", "", "State data file used to seed an empty database (overrides CAPITALS_CSV)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides CAPITALS_LOG_LEVEL)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(statesCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig layers flags (highest priority) over CAPITALS_* env vars
// over defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.FromEnv()
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DB = v
	}
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.Driver = store.Driver(v)
	}
	if v, _ := cmd.Flags().GetString("csv"); v != "" {
		cfg.CSV = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, cfg.Validate()
}
