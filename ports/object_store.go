package ports

import (
	"context"
)

// ObjectStore is key-based blob storage bound to a single bucket.
// Get and Download return an error wrapping core.ErrObjectNotFound for missing keys.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	PutFile(ctx context.Context, key string, localPath string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Download(ctx context.Context, key string, localPath string) error

	// Exists reports whether any object key starts with prefix
	Exists(ctx context.Context, prefix string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)

	Bucket() string
	Provider() string
}
