package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"mlpipe/domain/artifact"
	"mlpipe/domain/core"
	"mlpipe/domain/run"
	"mlpipe/domain/stage"
	"mlpipe/internal/migration"
	"mlpipe/ports"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest(t *testing.T, createdAt time.Time) *run.RunManifest {
	t.Helper()
	return run.NewRunManifest(
		core.NewRunID(),
		"personality",
		core.NewTimestamp(createdAt),
		core.SchemaHash("schema"),
		core.ConfigHash("config"),
		stage.DefaultPlan(),
		42,
		"test",
	)
}

func newSQLiteLedger(t *testing.T) ports.RunLedger {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(ctx, db))
	return NewRunLedger(db)
}

func TestRunLedger_RecordRunUsesPostgresPlaceholders(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	ledger := NewRunLedger(sqlx.NewDb(mockDB, "postgres"))
	manifest := testManifest(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	mock.ExpectExec(`INSERT INTO pipeline_runs .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, '', \$10, ''\)`).
		WithArgs(manifest.RunID.String(), "personality", "2026_01_02_03_04_05",
			manifest.Fingerprint.Fingerprint.String(), "schema", "config",
			int64(42), "test", ports.RunStatusRunning, "2026-01-02T03:04:05Z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, ledger.RecordRun(context.Background(), manifest))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLedger_FinishRunMissingRun(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	ledger := NewRunLedger(sqlx.NewDb(mockDB, "postgres"))
	mock.ExpectExec(`UPDATE pipeline_runs SET status = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ledger.FinishRun(context.Background(), core.RunID("missing"), ports.RunStatusFailed, "INTERNAL_ERROR")
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLedger_RecordStagePropagatesDriverErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	ledger := NewRunLedger(sqlx.NewDb(mockDB, "postgres"))
	mock.ExpectExec(`INSERT INTO stage_results`).WillReturnError(errors.New("connection reset"))

	result := stage.NewStageResult(stage.StageCleaning, time.Now(), "", nil)
	err = ledger.RecordStage(context.Background(), core.RunID("r1"), result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRunLedger_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	ledger := newSQLiteLedger(t)

	manifest := testManifest(t, time.Now())
	require.NoError(t, ledger.RecordRun(ctx, manifest))

	started := time.Now()
	require.NoError(t, ledger.RecordStage(ctx, manifest.RunID, stage.NewStageResult(stage.StageIngestion, started, "", nil)))
	require.NoError(t, ledger.RecordStage(ctx, manifest.RunID,
		stage.NewStageResult(stage.StageValidation, started, "VALIDATION_ERROR", errors.New("missing column"))))
	require.NoError(t, ledger.RecordEvaluation(ctx, manifest.RunID,
		artifact.MetricArtifact{Accuracy: 0.9, F1: 0.88, Precision: 0.87, Recall: 0.89},
		artifact.EvaluationArtifact{Accepted: true, Delta: 0.88, TrainedModelF1: 0.88, ProductionModelKey: "model/model.json"}))
	require.NoError(t, ledger.FinishRun(ctx, manifest.RunID, ports.RunStatusFailed, "VALIDATION_ERROR"))

	record, err := ledger.GetRun(ctx, manifest.RunID)
	require.NoError(t, err)
	assert.Equal(t, "personality", record.Pipeline)
	assert.Equal(t, manifest.Fingerprint.Fingerprint, record.Fingerprint)
	assert.Equal(t, int64(42), record.Seed)
	assert.Equal(t, ports.RunStatusFailed, record.Status)
	assert.Equal(t, "VALIDATION_ERROR", record.ErrorCode)
	assert.False(t, record.FinishedAt.IsZero())

	results, err := ledger.GetStageResults(ctx, manifest.RunID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, stage.StageIngestion, results[0].StageName)
	assert.True(t, results[0].Success)
	assert.Equal(t, stage.StageValidation, results[1].StageName)
	assert.False(t, results[1].Success)
	assert.Equal(t, "missing column", results[1].Error)
}

func TestRunLedger_ListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	ledger := newSQLiteLedger(t)

	older := testManifest(t, time.Now().Add(-time.Hour))
	newer := testManifest(t, time.Now())
	require.NoError(t, ledger.RecordRun(ctx, older))
	require.NoError(t, ledger.RecordRun(ctx, newer))

	runs, err := ledger.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].RunID)
	assert.Equal(t, ports.RunStatusRunning, runs[1].Status)
	assert.True(t, runs[1].FinishedAt.IsZero())

	_, err = ledger.GetRun(ctx, core.RunID("missing"))
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
