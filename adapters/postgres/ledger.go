package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mlpipe/domain/artifact"
	"mlpipe/domain/core"
	"mlpipe/domain/run"
	"mlpipe/domain/stage"
	"mlpipe/ports"

	"github.com/jmoiron/sqlx"
)

// runLedger implements ports.RunLedger on postgres or sqlite. Queries are
// written with ? placeholders and rebound for the connected driver.
type runLedger struct {
	db *sqlx.DB
}

// NewRunLedger creates a run ledger over a migrated database
func NewRunLedger(db *sqlx.DB) ports.RunLedger {
	return &runLedger{db: db}
}

type runRow struct {
	RunID        string `db:"run_id"`
	PipelineName string `db:"pipeline_name"`
	Stamp        string `db:"stamp"`
	Fingerprint  string `db:"fingerprint"`
	Seed         int64  `db:"seed"`
	Status       string `db:"status"`
	ErrorCode    string `db:"error_code"`
	CreatedAt    string `db:"created_at"`
	FinishedAt   string `db:"finished_at"`
}

type stageRow struct {
	StageName    string `db:"stage_name"`
	Success      bool   `db:"success"`
	ErrorCode    string `db:"error_code"`
	ErrorMessage string `db:"error_message"`
	StartedAt    string `db:"started_at"`
	DurationMS   int64  `db:"duration_ms"`
}

// RecordRun inserts the run row in running status
func (r *runLedger) RecordRun(ctx context.Context, manifest *run.RunManifest) error {
	query := r.db.Rebind(`INSERT INTO pipeline_runs (
		run_id, pipeline_name, stamp, fingerprint, schema_hash, config_hash,
		seed, code_version, status, error_code, created_at, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?, '')`)

	_, err := r.db.ExecContext(ctx, query,
		manifest.RunID.String(), manifest.PipelineName, manifest.Stamp,
		manifest.Fingerprint.Fingerprint.String(), manifest.SchemaHash.String(), manifest.ConfigHash.String(),
		manifest.Seed, manifest.CodeVersion, ports.RunStatusRunning, manifest.CreatedAt.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecordStage appends a stage outcome; position follows insertion order
func (r *runLedger) RecordStage(ctx context.Context, runID core.RunID, result stage.StageResult) error {
	query := r.db.Rebind(`INSERT INTO stage_results (
		run_id, stage_name, position, success, error_code, error_message, started_at, duration_ms
	) VALUES (?, ?, (SELECT COUNT(*) FROM stage_results WHERE run_id = ?), ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		runID.String(), string(result.StageName), runID.String(), result.Success,
		result.ErrorCode, result.Error, result.StartedAt.String(), result.Duration,
	)
	if err != nil {
		return fmt.Errorf("failed to record stage %s: %w", result.StageName, err)
	}
	return nil
}

// RecordEvaluation stores the candidate's test metrics and the gate decision
func (r *runLedger) RecordEvaluation(ctx context.Context, runID core.RunID, metrics artifact.MetricArtifact, eval artifact.EvaluationArtifact) error {
	query := r.db.Rebind(`INSERT INTO model_evaluations (
		run_id, accuracy, f1_score, precision_score, recall_score,
		production_f1_score, production_present, accepted, delta,
		candidate_model_path, production_model_key
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		runID.String(), metrics.Accuracy, metrics.F1, metrics.Precision, metrics.Recall,
		eval.ProductionModelF1, eval.ProductionPresent, eval.Accepted, eval.Delta,
		eval.CandidateModelPath, eval.ProductionModelKey,
	)
	if err != nil {
		return fmt.Errorf("failed to record evaluation: %w", err)
	}
	return nil
}

// FinishRun sets the final status of a run
func (r *runLedger) FinishRun(ctx context.Context, runID core.RunID, status string, errorCode string) error {
	query := r.db.Rebind(`UPDATE pipeline_runs SET status = ?, error_code = ?, finished_at = ? WHERE run_id = ?`)

	res, err := r.db.ExecContext(ctx, query, status, errorCode, core.Now().String(), runID.String())
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, core.ErrNotFound)
	}
	return nil
}

// GetRun retrieves one run by id
func (r *runLedger) GetRun(ctx context.Context, runID core.RunID) (*ports.RunRecord, error) {
	query := r.db.Rebind(`SELECT run_id, pipeline_name, stamp, fingerprint, seed, status,
		error_code, created_at, finished_at
	FROM pipeline_runs WHERE run_id = ?`)

	var row runRow
	if err := r.db.GetContext(ctx, &row, query, runID.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s: %w", runID, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	record := row.toRecord()
	return &record, nil
}

// ListRuns returns the most recent runs first
func (r *runLedger) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.db.Rebind(`SELECT run_id, pipeline_name, stamp, fingerprint, seed, status,
		error_code, created_at, finished_at
	FROM pipeline_runs ORDER BY created_at DESC LIMIT ?`)

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	records := make([]ports.RunRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records, nil
}

// GetStageResults returns a run's stage outcomes in execution order
func (r *runLedger) GetStageResults(ctx context.Context, runID core.RunID) ([]stage.StageResult, error) {
	query := r.db.Rebind(`SELECT stage_name, success, error_code, error_message, started_at, duration_ms
	FROM stage_results WHERE run_id = ? ORDER BY position`)

	var rows []stageRow
	if err := r.db.SelectContext(ctx, &rows, query, runID.String()); err != nil {
		return nil, fmt.Errorf("failed to get stage results: %w", err)
	}

	results := make([]stage.StageResult, len(rows))
	for i, row := range rows {
		results[i] = stage.StageResult{
			StageName: stage.StageName(row.StageName),
			Success:   row.Success,
			ErrorCode: row.ErrorCode,
			Error:     row.ErrorMessage,
			StartedAt: parseStoredTime(row.StartedAt),
			Duration:  row.DurationMS,
		}
	}
	return results, nil
}

func (row runRow) toRecord() ports.RunRecord {
	return ports.RunRecord{
		RunID:       core.RunID(row.RunID),
		Pipeline:    row.PipelineName,
		Stamp:       row.Stamp,
		Fingerprint: core.Hash(row.Fingerprint),
		Seed:        row.Seed,
		Status:      row.Status,
		ErrorCode:   row.ErrorCode,
		CreatedAt:   parseStoredTime(row.CreatedAt),
		FinishedAt:  parseStoredTime(row.FinishedAt),
	}
}

// Unfinished runs store an empty finished_at
func parseStoredTime(s string) core.Timestamp {
	if s == "" {
		return core.NewTimestamp(time.Time{})
	}
	ts, err := core.ParseTimestamp(s)
	if err != nil {
		return core.NewTimestamp(time.Time{})
	}
	return ts
}
