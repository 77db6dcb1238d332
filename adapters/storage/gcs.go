package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"mlpipe/domain/core"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore implements ports.ObjectStore using Google Cloud Storage
type GCSStore struct {
	client *storage.Client
	bucket string
}

// GCSStoreConfig holds configuration for GCSStore.
type GCSStoreConfig struct {
	Bucket string
}

// NewGCSStore creates a new GCS-backed object store (uses ADC by default)
func NewGCSStore(ctx context.Context, cfg GCSStoreConfig) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Provider returns the storage provider type
func (s *GCSStore) Provider() string {
	return "gcs"
}

// Bucket returns the bucket name
func (s *GCSStore) Bucket() string {
	return s.bucket
}

// Put uploads data under key
func (s *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/octet-stream"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write failed for %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close failed for %s: %w", key, err)
	}
	return nil
}

// PutFile uploads a local file under key
func (s *GCSStore) PutFile(ctx context.Context, key string, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	return s.Put(ctx, key, data)
}

// Get downloads the object at key
func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: gs://%s/%s", core.ErrObjectNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("gcs get failed for %s: %w", key, err)
	}
	defer func() { _ = reader.Close() }()

	return io.ReadAll(reader)
}

// Download copies the object at key to localPath
func (s *GCSStore) Download(ctx context.Context, key string, localPath string) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return writeLocal(localPath, data)
}

// Exists reports whether any key starts with prefix
func (s *GCSStore) Exists(ctx context.Context, prefix string) (bool, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	_, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("gcs list failed for %s: %w", prefix, err)
	}
	return true, nil
}

// List returns every key that starts with prefix
func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list failed for %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

// Close closes the GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
