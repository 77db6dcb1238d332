package app

import (
	"context"

	"mlpipe/adapters/tabular"
	"mlpipe/domain/artifact"
	"mlpipe/domain/core"
	"mlpipe/domain/stage"
	"mlpipe/internal"
	"mlpipe/internal/config"
	"mlpipe/internal/errors"
	"mlpipe/ports"
)

// MongoIDField is the document key dropped from exported tables
const MongoIDField = "_id"

// Ingestion exports the source collection into the artifact tree and the bucket
type Ingestion struct {
	cfg    *config.Config
	source ports.DocumentSource
	store  ports.ObjectStore
	logger *internal.Logger
}

// NewIngestion creates the ingestion stage
func NewIngestion(cfg *config.Config, source ports.DocumentSource, store ports.ObjectStore, logger *internal.Logger) *Ingestion {
	return &Ingestion{
		cfg:    cfg,
		source: source,
		store:  store,
		logger: logger.With("ingestion"),
	}
}

// Run exports the collection, writes it as CSV and uploads the latest copy
func (s *Ingestion) Run(ctx context.Context) (artifact.IngestionArtifact, error) {
	name := string(stage.StageIngestion)
	src := s.cfg.Source
	s.logger.Info("Exporting collection %s.%s", src.DatabaseName, src.CollectionName)

	table, err := s.source.ExportCollection(ctx, src.DatabaseName, src.CollectionName)
	if err != nil {
		return artifact.IngestionArtifact{}, errors.Ingestion(name, "failed to export collection", err)
	}
	if table.Has(MongoIDField) {
		table = table.Drop(MongoIDField)
	}
	if table.Len() == 0 || table.Width() == 0 {
		return artifact.IngestionArtifact{}, errors.Ingestion(name,
			"collection "+src.CollectionName+" has no documents", core.ErrEmptyDataset)
	}
	s.logger.Info("Exported table with %d rows and %d columns", table.Len(), table.Width())

	dataPath := s.cfg.Paths.IngestedData()
	if err := writeBoth(dataPath, func(p string) error { return tabular.WriteCSV(p, table) }); err != nil {
		return artifact.IngestionArtifact{}, errors.Ingestion(name, "failed to write ingested data", err)
	}

	key, err := upload(ctx, s.store, s.cfg.Paths, dataPath)
	if err != nil {
		return artifact.IngestionArtifact{}, errors.Ingestion(name, "failed to upload ingested data", err)
	}
	s.logger.Debug("Uploaded %s to bucket %s", key, s.store.Bucket())

	return artifact.IngestionArtifact{
		IngestedDataPath: dataPath.Path,
		BucketName:       s.store.Bucket(),
		Rows:             table.Len(),
		Columns:          table.Width(),
	}, nil
}
