package storage

import (
	"context"
	"fmt"

	"mlpipe/internal/config"
	"mlpipe/ports"
)

// NewStore creates the object store selected by OBJECT_STORE
func NewStore(ctx context.Context, cfg config.StoreConfig) (ports.ObjectStore, error) {
	switch cfg.Backend {
	case config.StoreLocal:
		return NewLocalStore(cfg.LocalDir, cfg.Bucket)
	case config.StoreS3:
		return NewS3Store(ctx, S3StoreConfig{
			Bucket:   cfg.Bucket,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
	case config.StoreGCS:
		return NewGCSStore(ctx, GCSStoreConfig{Bucket: cfg.Bucket})
	default:
		return nil, fmt.Errorf("unsupported object store: %s", cfg.Backend)
	}
}
