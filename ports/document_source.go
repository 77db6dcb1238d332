package ports

import (
	"context"

	"mlpipe/domain/dataset"
)

// DocumentSource exports a whole collection from a document database as a table
type DocumentSource interface {
	ExportCollection(ctx context.Context, database, collection string) (*dataset.Table, error)
	Close(ctx context.Context) error
}
