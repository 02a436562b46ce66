// Package storage reads and writes pipeline objects on S3 or a local directory tree.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned (wrapped) when an object does not exist.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned (wrapped) when a key cannot be addressed, such as
// a local key that resolves outside the store root.
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore is the pipeline's view of object storage.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	// Location renders a human-readable address for logs and summaries.
	Location(bucket, key string) string
}
