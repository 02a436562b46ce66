// Package secrets fetches runtime settings from AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"insurance-data-pipeline/internal/model"
)

// Client is the subset of the Secrets Manager API used here.
type Client interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var _ Client = (*secretsmanager.Client)(nil)

// NewClient builds a Secrets Manager client from the default credential chain.
func NewClient(ctx context.Context, region string) (*secretsmanager.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// Fetch reads and decodes the secret at arn.
func Fetch(ctx context.Context, client Client, arn string) (model.Settings, error) {
	var settings model.Settings
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return settings, fmt.Errorf("failed to fetch secret: %w", err)
	}

	secret := aws.ToString(out.SecretString)
	if secret == "" {
		secret = "{}"
	}
	if err := json.Unmarshal([]byte(secret), &settings); err != nil {
		return settings, fmt.Errorf("failed to decode secret: %w", err)
	}
	return settings, nil
}

// Load returns the settings at arn, falling back to defaults when no ARN is
// configured or the secret cannot be read. A broken secret never blocks processing.
func Load(ctx context.Context, client Client, arn string, logger *slog.Logger) model.Settings {
	if arn == "" || client == nil {
		logger.Info("No SECRET_ARN configured, using defaults")
		return model.Settings{}
	}
	settings, err := Fetch(ctx, client, arn)
	if err != nil {
		logger.Error("Failed to fetch secret", "error", err)
		return model.Settings{}
	}
	return settings
}
