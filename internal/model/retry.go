package model

import "time"

// RetryConfig defines retry behavior for storage operations
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" json:"max_attempts"`
	InitialDelay      time.Duration `yaml:"initial_delay" json:"initial_delay"`
	MaxDelay          time.Duration `yaml:"max_delay" json:"max_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" json:"backoff_multiplier"`
	Jitter            bool          `yaml:"jitter" json:"jitter"`
}

// DefaultRetryConfig is used when no retry section is configured.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:       3,
	InitialDelay:      200 * time.Millisecond,
	MaxDelay:          5 * time.Second,
	BackoffMultiplier: 2.0,
	Jitter:            true,
}
