package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"insurance-data-pipeline/internal/api"
	"insurance-data-pipeline/internal/api/handler"
	"insurance-data-pipeline/internal/config"
	"insurance-data-pipeline/internal/pipeline"
	"insurance-data-pipeline/internal/store"
)

const defaultDBPath = "pipeline.db"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		return Serve(cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// Serve runs the HTTP API until SIGINT or SIGTERM. Object jobs are only
// enabled when a processed bucket is configured.
func Serve(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	db, err := store.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open job database", "path", dbPath, "error", err)
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	processor, err := NewProcessor(cfg)
	if err != nil {
		logger.Error("Invalid processing rules", "error", err)
		return err
	}

	var runner *pipeline.Runner
	if err := cfg.Validate(); err != nil {
		logger.Warn("Object jobs disabled", "reason", err)
	} else if runner, err = NewRunner(ctx, cfg, processor, logger); err != nil {
		logger.Warn("Object jobs disabled", "reason", err)
	}

	h := handler.New(processor, runner, db, cfg.Server.JobTimeout, logger)
	r := api.NewRouter(h, logger)

	err = r.Start(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
	logger.Info("Waiting for running jobs")
	h.Wait()
	return err
}
