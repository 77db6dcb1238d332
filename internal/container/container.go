package container

import (
	"context"
	"fmt"

	"mlpipe/adapters/mongo"
	"mlpipe/adapters/postgres"
	"mlpipe/adapters/storage"
	"mlpipe/app"
	"mlpipe/domain/schema"
	"mlpipe/domain/stage"
	"mlpipe/internal"
	"mlpipe/internal/config"
	"mlpipe/internal/errors"
	"mlpipe/internal/migration"
	"mlpipe/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger
	Schema *schema.Schema

	// Infrastructure
	DB     *sqlx.DB
	Store  ports.ObjectStore
	Source ports.DocumentSource

	// Run history
	Ledger ports.RunLedger

	Pipeline *app.Pipeline
}

// New creates a new dependency injection container and loads the schema
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	sch, err := schema.Load(cfg.Schema.Path)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeConfigInvalid, err), "failed to load schema")
	}

	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
		Schema: sch,
	}, nil
}

// InitWithDatabase opens and migrates the run ledger database
func (c *Container) InitWithDatabase(ctx context.Context) error {
	db, err := postgres.Open(ctx, c.Config.Ledger.Driver, c.Config.Ledger.DSN)
	if err != nil {
		return errors.DatabaseError("failed to open ledger", err)
	}

	var migrator migration.Migrator = migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return errors.DatabaseError("ledger migration failed", err)
	}

	c.DB = db
	c.Ledger = postgres.NewRunLedger(db)
	c.Logger.Debug("Run ledger ready (%s, schema %s)", c.Config.Ledger.Driver, migrator.Version())
	return nil
}

// InitStore connects the configured object store
func (c *Container) InitStore(ctx context.Context) error {
	store, err := storage.NewStore(ctx, c.Config.Store)
	if err != nil {
		return errors.Wrap(err, "failed to initialize object store")
	}
	c.Store = store
	c.Logger.Debug("Object store %s ready (bucket %s)", store.Provider(), store.Bucket())
	return nil
}

// InitSource uses source when given, otherwise connects to MongoDB
func (c *Container) InitSource(ctx context.Context, source ports.DocumentSource) error {
	if source != nil {
		c.Source = source
		return nil
	}

	src, err := mongo.NewSource(ctx, c.Config.Source.MongoURL, c.Logger)
	if err != nil {
		return errors.Ingestion(string(stage.StageIngestion), "failed to connect to document store", err)
	}
	c.Source = src
	return nil
}

// InitPipeline wires the training pipeline from the initialized dependencies
func (c *Container) InitPipeline(codeVersion string) error {
	if c.Store == nil || c.Source == nil {
		return errors.InternalError("store and source must be initialized before the pipeline")
	}

	p, err := app.NewPipeline(app.PipelineDeps{
		Config:      c.Config,
		Schema:      c.Schema,
		Source:      c.Source,
		Store:       c.Store,
		Ledger:      c.Ledger,
		Logger:      c.Logger,
		CodeVersion: codeVersion,
	})
	if err != nil {
		return err
	}
	c.Pipeline = p
	return nil
}

// Shutdown closes the source and the database
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.Source != nil {
		if err := c.Source.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
