package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v2"

	"insurance-data-pipeline/internal/model"
)

// Load reads configuration from a YAML file, expanding ${VAR} references.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// FromEnv builds the configuration the Lambda runtime uses.
func FromEnv() *AppConfig {
	cfg := AppConfig{
		Log:       LogConfig{Level: os.Getenv("LOG_LEVEL"), NoColor: true},
		Storage:   StorageConfig{Backend: "s3", Region: os.Getenv("AWS_REGION")},
		SecretARN: os.Getenv("SECRET_ARN"),
		Output: OutputConfig{
			ProcessedBucket: os.Getenv("PROCESSED_S3_BUCKET"),
			ErrorBucket:     os.Getenv("ERROR_BUCKET"),
			Format:          os.Getenv("OUTPUT_FORMAT"),
		},
		Processing: ProcessingConfig{ProcessingIDMode: os.Getenv("PROCESSING_ID_MODE")},
	}
	cfg.applyDefaults()
	return &cfg
}

// LoadOrEnv reads path when it exists and falls back to the environment.
func LoadOrEnv(path string) (*AppConfig, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return FromEnv(), nil
}

func (c *AppConfig) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.JobTimeout == 0 {
		c.Server.JobTimeout = 5 * time.Minute
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "s3"
	}
	if c.Output.Format == "" {
		c.Output.Format = "parquet"
	}
	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 4
	}
	if c.Processing.ProcessingIDMode == "" {
		c.Processing.ProcessingIDMode = "timestamp"
	}

	def := model.DefaultRetryConfig
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = def.MaxAttempts
	}
	if c.Retry.InitialDelay == 0 {
		c.Retry.InitialDelay = def.InitialDelay
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = def.MaxDelay
	}
	if c.Retry.BackoffMultiplier == 0 {
		c.Retry.BackoffMultiplier = def.BackoffMultiplier
	}
}

// Validate checks the settings the batch runner cannot work without.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Output.ProcessedBucket == "" {
		errs = append(errs, errors.New("output.processed_bucket (PROCESSED_S3_BUCKET) is required"))
	}
	switch strings.ToLower(c.Output.Format) {
	case "parquet", "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("unsupported output format %q", c.Output.Format))
	}
	switch c.Storage.Backend {
	case "s3", "local":
	default:
		errs = append(errs, fmt.Errorf("unsupported storage backend %q", c.Storage.Backend))
	}
	errs = append(errs, c.ValidateRules())
	return errors.Join(errs...)
}

// ValidateRules checks the configured rule overrides. Fields the typed record
// stores as numbers must keep a numeric rule.
func (c *AppConfig) ValidateRules() error {
	var errs []error
	defaults := model.DefaultRules()
	for field, rule := range c.Processing.Rules {
		switch rule.Kind {
		case model.RuleInt, model.RuleFloat, model.RuleEnum:
		default:
			errs = append(errs, fmt.Errorf("rule for %s has unknown kind %q", field, rule.Kind))
			continue
		}
		if def, ok := defaults[field]; ok && def.Numeric() && !rule.Numeric() {
			errs = append(errs, fmt.Errorf("rule for %s must be int or float, got %q", field, rule.Kind))
		}
	}
	return errors.Join(errs...)
}

// NewLogger builds a tint-backed slog logger for the configured level.
func NewLogger(cfg LogConfig, debug bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case debug || cfg.Level == "debug":
		level = slog.LevelDebug
	case cfg.Level == "warn":
		level = slog.LevelWarn
	case cfg.Level == "error":
		level = slog.LevelError
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.NoColor,
	}))
}
