package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutGet(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewLocalStore(root)

	require.NoError(t, store.Put(ctx, "processed", "a/b/c.json", []byte("{}"), "application/json"))

	body, err := store.Get(ctx, "processed", "a/b/c.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
	assert.Equal(t, filepath.Join(root, "processed", "a", "b", "c.json"), store.Location("processed", "a/b/c.json"))
}

func TestLocalStore_NotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	_, err := store.Get(context.Background(), "raw", "missing.csv")
	require.ErrorIs(t, err, ErrNotFound)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[k] = body
	f.types[k] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	store := NewS3Store(fake)

	require.NoError(t, store.Put(ctx, "bucket", "k.csv", []byte("a,b"), "text/csv"))
	assert.Equal(t, "text/csv", fake.types["bucket/k.csv"])

	body, err := store.Get(ctx, "bucket", "k.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b", string(body))

	_, err = store.Get(ctx, "bucket", "nope.csv")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, "s3://bucket/k.csv", store.Location("bucket", "k.csv"))
}

func TestLocalStore_RejectsKeysOutsideRoot(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	store := NewLocalStore(root)

	tests := []struct {
		name   string
		bucket string
		key    string
	}{
		{"parent traversal", "raw", "../../secret.csv"},
		{"traversal inside key", "raw", "a/../../../secret.csv"},
		{"traversal in bucket", "..", "secret.csv"},
		{"absolute key", "", "/etc/passwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Get(ctx, tt.bucket, tt.key)
			assert.ErrorIs(t, err, ErrInvalidKey)

			err = store.Put(ctx, tt.bucket, tt.key, []byte("x"), "text/csv")
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}

	_, err := os.Stat(filepath.Join(parent, "secret.csv"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Put(ctx, "raw", "a/../b.csv", []byte("x"), "text/csv"))
	_, err = os.Stat(filepath.Join(root, "raw", "b.csv"))
	assert.NoError(t, err)
}
