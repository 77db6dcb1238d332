package ports

import (
	"context"

	"mlpipe/domain/artifact"
	"mlpipe/domain/core"
	"mlpipe/domain/run"
	"mlpipe/domain/stage"
)

// Run statuses recorded in the ledger
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// RunLedgerWriter appends run history. Rows are never updated except the run's final status.
type RunLedgerWriter interface {
	RecordRun(ctx context.Context, manifest *run.RunManifest) error
	RecordStage(ctx context.Context, runID core.RunID, result stage.StageResult) error
	RecordEvaluation(ctx context.Context, runID core.RunID, metrics artifact.MetricArtifact, eval artifact.EvaluationArtifact) error
	FinishRun(ctx context.Context, runID core.RunID, status string, errorCode string) error
}

// RunLedgerReader provides read-only access to run history
type RunLedgerReader interface {
	GetRun(ctx context.Context, runID core.RunID) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	GetStageResults(ctx context.Context, runID core.RunID) ([]stage.StageResult, error)
}

// RunLedger combines read and write access
type RunLedger interface {
	RunLedgerWriter
	RunLedgerReader
}

// RunRecord is one row of run history
type RunRecord struct {
	RunID       core.RunID     `json:"run_id"`
	Pipeline    string         `json:"pipeline_name"`
	Stamp       string         `json:"stamp"`
	Fingerprint core.Hash      `json:"fingerprint"`
	Seed        int64          `json:"seed"`
	Status      string         `json:"status"`
	ErrorCode   string         `json:"error_code,omitempty"`
	CreatedAt   core.Timestamp `json:"created_at"`
	FinishedAt  core.Timestamp `json:"finished_at"`
}
