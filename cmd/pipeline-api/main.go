package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"insurance-data-pipeline/internal/cli"
	"insurance-data-pipeline/internal/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Log, *isDebug)
	slog.SetDefault(logger)

	if err := cli.Serve(cfg, logger); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
