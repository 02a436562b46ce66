package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore maps buckets to directories under Root. An empty Root resolves
// relative to the working directory, which lets the CLI address plain paths
// with an empty bucket. Keys never reach outside Root.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) path(bucket, key string) string {
	return filepath.Join(s.Root, bucket, filepath.FromSlash(key))
}

// resolve returns the path for bucket/key, refusing anything that is absolute
// or climbs out of Root.
func (s *LocalStore) resolve(bucket, key string) (string, error) {
	rel := filepath.Join(bucket, filepath.FromSlash(key))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%s/%s escapes the storage root: %w", bucket, key, ErrInvalidKey)
	}
	return filepath.Join(s.Root, rel), nil
}

func (s *LocalStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := s.resolve(bucket, key)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.Location(bucket, key), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Location(bucket, key), err)
	}
	return body, nil
}

func (s *LocalStore) Put(ctx context.Context, bucket, key string, body []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(target, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

func (s *LocalStore) Location(bucket, key string) string {
	return s.path(bucket, key)
}
