package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gruby/internal/app"
	"gruby/internal/config"
	"gruby/internal/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "grubyctl",
	Short: "Operator tasks for the Gruby backend",
	Long: `grubyctl runs maintenance jobs against the Gruby database: index
bootstrap, embedding backfills and console notifications. It reads the
same environment (or .env file) as the API server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, note := config.LoadConfig()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	zl.Debug(note)
	return cfg, zl, nil
}

// withApp opens the database, runs fn and closes everything again.
func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	cfg, zl, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := app.Open(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			zl.Warn("close", zap.Error(err))
		}
	}()
	return fn(ctx, a)
}
