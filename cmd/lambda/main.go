package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"insurance-data-pipeline/internal/cli"
	"insurance-data-pipeline/internal/config"
	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/internal/pipeline"
)

func main() {
	cfg := config.FromEnv()
	logger := config.NewLogger(cfg.Log, false)
	slog.SetDefault(logger)

	lambda.Start(func(ctx context.Context, evt events.S3Event) (model.HandlerResponse, error) {
		if err := cfg.Validate(); err != nil {
			logger.Error("❌ Invalid configuration", "error", err)
			return pipeline.ErrorResponse(err, time.Now()), nil
		}

		processor, err := cli.NewProcessor(cfg)
		if err != nil {
			logger.Error("❌ Invalid processing rules", "error", err)
			return pipeline.ErrorResponse(err, time.Now()), nil
		}
		runner, err := cli.NewRunner(ctx, cfg, processor, logger)
		if err != nil {
			logger.Error("❌ Failed to initialize runner", "error", err)
			return pipeline.ErrorResponse(err, time.Now()), nil
		}
		return runner.HandleS3Event(ctx, evt), nil
	})
}
