package config

import (
	"time"

	"insurance-data-pipeline/internal/model"
)

// AppConfig is the full configuration for the CLI, API server and Lambda.
type AppConfig struct {
	Log        LogConfig         `yaml:"log"`
	Server     ServerConfig      `yaml:"server"`
	Database   DatabaseConfig    `yaml:"database"`
	Storage    StorageConfig     `yaml:"storage"`
	Output     OutputConfig      `yaml:"output"`
	SecretARN  string            `yaml:"secret_arn"`
	Processing ProcessingConfig  `yaml:"processing"`
	Retry      model.RetryConfig `yaml:"retry"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	NoColor bool   `yaml:"no_color"`
}

type ServerConfig struct {
	Port       int           `yaml:"port"`
	JobTimeout time.Duration `yaml:"job_timeout"`
}

// DatabaseConfig points at the sqlite job history. An empty path disables it.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type StorageConfig struct {
	// Backend is "s3" or "local".
	Backend   string `yaml:"backend"`
	LocalRoot string `yaml:"local_root"`
	Region    string `yaml:"region"`
}

type OutputConfig struct {
	ProcessedBucket string `yaml:"processed_bucket"`
	// ErrorBucket is optional; rejected rows are not written without it.
	ErrorBucket string `yaml:"error_bucket"`
	Format      string `yaml:"format"`
}

type ProcessingConfig struct {
	Workers int `yaml:"workers"`
	// ProcessingIDMode is "timestamp" (default) or "uuid".
	ProcessingIDMode string                     `yaml:"processing_id"`
	Rules            map[string]model.FieldRule `yaml:"rules"`
}
