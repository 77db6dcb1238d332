package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mlpipe/domain/core"
)

// LocalStore implements ports.ObjectStore on the local filesystem.
// The bucket is a directory under basePath; keys map to slash-separated paths inside it.
type LocalStore struct {
	basePath string
	bucket   string
}

// NewLocalStore creates a new local object store
func NewLocalStore(basePath, bucket string) (*LocalStore, error) {
	if bucket == "" {
		return nil, core.NewValidationError("bucket", "name cannot be empty")
	}
	// Ensure bucket directory exists
	if err := os.MkdirAll(filepath.Join(basePath, bucket), 0755); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory: %w", err)
	}

	return &LocalStore{
		basePath: basePath,
		bucket:   bucket,
	}, nil
}

// Provider returns the storage provider type
func (s *LocalStore) Provider() string {
	return "local"
}

// Bucket returns the bucket name
func (s *LocalStore) Bucket() string {
	return s.bucket
}

// Put writes data under key, replacing any existing object
func (s *LocalStore) Put(ctx context.Context, key string, data []byte) error {
	filePath := s.keyToPath(key)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	return nil
}

// PutFile copies a local file under key
func (s *LocalStore) PutFile(ctx context.Context, key string, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	return s.Put(ctx, key, data)
}

// Get reads the object at key
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	filePath := s.keyToPath(key)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", core.ErrObjectNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	return io.ReadAll(file)
}

// Download copies the object at key to localPath
func (s *LocalStore) Download(ctx context.Context, key string, localPath string) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return writeLocal(localPath, data)
}

// Exists reports whether any key starts with prefix
func (s *LocalStore) Exists(ctx context.Context, prefix string) (bool, error) {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return false, err
	}
	return len(keys) > 0, nil
}

// List returns every key that starts with prefix, sorted
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	root := filepath.Join(s.basePath, s.bucket)

	var keys []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		// Convert path back to key
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := strings.ReplaceAll(relPath, string(filepath.Separator), "/")

		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// keyToPath converts an S3-style key to a filesystem path,
// e.g. "model-registry/model.json" -> "<base>/<bucket>/model-registry/model.json"
func (s *LocalStore) keyToPath(key string) string {
	return filepath.Join(s.basePath, s.bucket, filepath.FromSlash(key))
}

func writeLocal(localPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", localPath, err)
	}
	if err := os.WriteFile(localPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	return nil
}
