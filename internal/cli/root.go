package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"insurance-data-pipeline/internal/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Insurance data pipeline",
	Long: `Validates, normalizes and enriches insurance records, writing processed
rows and rejected rows to separate outputs.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file; the environment is used when it does not exist")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig reads .env, then the config file or the environment, and
// installs the configured logger as the slog default.
func loadConfig() (*config.AppConfig, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadOrEnv(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return nil, nil, err
	}

	logger := config.NewLogger(cfg.Log, isDebug)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
