package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"insurance-data-pipeline/internal/config"
	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/internal/pipeline"
	"insurance-data-pipeline/internal/secrets"
	"insurance-data-pipeline/internal/storage"
)

// NewObjectStore opens the configured storage backend.
func NewObjectStore(ctx context.Context, cfg *config.AppConfig) (storage.ObjectStore, error) {
	switch cfg.Storage.Backend {
	case "local":
		return storage.NewLocalStore(cfg.Storage.LocalRoot), nil
	case "s3":
		return storage.NewS3StoreFromEnv(ctx, cfg.Storage.Region)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// NewProcessor builds the record processor from the processing settings.
func NewProcessor(cfg *config.AppConfig) (*pipeline.Processor, error) {
	if err := cfg.ValidateRules(); err != nil {
		return nil, err
	}
	return pipeline.NewProcessor(
		pipeline.WithRules(cfg.Processing.Rules),
		pipeline.WithProcessingID(pipeline.ProcessingIDByMode(cfg.Processing.ProcessingIDMode)),
	), nil
}

// LoadSettings fetches the runtime settings secret. Without a secret ARN the
// defaults are used and no AWS client is created.
func LoadSettings(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) model.Settings {
	if cfg.SecretARN == "" {
		return model.Settings{}
	}
	client, err := secrets.NewClient(ctx, cfg.Storage.Region)
	if err != nil {
		logger.Warn("Failed to create secrets client, using defaults", "error", err)
		return model.Settings{}
	}
	return secrets.Load(ctx, client, cfg.SecretARN, logger)
}

// NewRunner wires storage, settings and the processor into a batch runner.
func NewRunner(ctx context.Context, cfg *config.AppConfig, processor *pipeline.Processor, logger *slog.Logger) (*pipeline.Runner, error) {
	objects, err := NewObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(objects, processor, pipeline.RunnerConfig{
		ProcessedBucket: cfg.Output.ProcessedBucket,
		ErrorBucket:     cfg.Output.ErrorBucket,
		Format:          strings.ToLower(cfg.Output.Format),
		Workers:         cfg.Processing.Workers,
		Retry:           cfg.Retry,
		Settings:        LoadSettings(ctx, cfg, logger),
	}, logger), nil
}

// parseObjectRef accepts "s3://bucket/key", "bucket/key" or, for the local
// backend, a plain file path.
func parseObjectRef(arg string, backend string) (model.ObjectRef, error) {
	if backend == "local" && !strings.HasPrefix(arg, "s3://") {
		return model.ObjectRef{Key: arg}, nil
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(arg, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return model.ObjectRef{}, fmt.Errorf("invalid object %q: expected bucket/key", arg)
	}
	return model.ObjectRef{Bucket: bucket, Key: key}, nil
}
