package migration

import (
	"context"
	"fmt"

	"mlpipe/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the run ledger schema. Statements are idempotent and
// limited to DDL that both postgres and sqlite accept.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createPipelineRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create pipeline_runs table")
	}

	if err := r.createStageResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create stage_results table")
	}

	if err := r.createModelEvaluationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create model_evaluations table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createPipelineRunsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS pipeline_runs (
		run_id TEXT PRIMARY KEY,
		pipeline_name TEXT NOT NULL,
		stamp TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		schema_hash TEXT NOT NULL,
		config_hash TEXT NOT NULL,
		seed BIGINT NOT NULL,
		code_version TEXT NOT NULL,
		status TEXT NOT NULL,
		error_code TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT ''
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createStageResultsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS stage_results (
		run_id TEXT NOT NULL REFERENCES pipeline_runs(run_id),
		stage_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		success BOOLEAN NOT NULL,
		error_code TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		duration_ms BIGINT NOT NULL,
		PRIMARY KEY (run_id, stage_name)
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createModelEvaluationsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS model_evaluations (
		run_id TEXT PRIMARY KEY REFERENCES pipeline_runs(run_id),
		accuracy DOUBLE PRECISION NOT NULL,
		f1_score DOUBLE PRECISION NOT NULL,
		precision_score DOUBLE PRECISION NOT NULL,
		recall_score DOUBLE PRECISION NOT NULL,
		production_f1_score DOUBLE PRECISION NOT NULL,
		production_present BOOLEAN NOT NULL,
		accepted BOOLEAN NOT NULL,
		delta DOUBLE PRECISION NOT NULL,
		candidate_model_path TEXT NOT NULL,
		production_model_key TEXT NOT NULL
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_created_at ON pipeline_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_fingerprint ON pipeline_runs(fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_stage_results_run_id ON stage_results(run_id)`,
	}

	for _, query := range indexes {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("index statement failed: %w", err)
		}
	}
	return nil
}
