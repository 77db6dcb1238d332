package app

import (
	"context"
	"testing"
	"time"

	"mlpipe/adapters/tabular"
	"mlpipe/domain/stage"
	"mlpipe/internal/errors"
	"mlpipe/internal/ml"
	"mlpipe/internal/testkit"
	"mlpipe/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, env *stageEnv, source ports.DocumentSource) *Pipeline {
	t.Helper()
	p, err := NewPipeline(PipelineDeps{
		Config:      env.cfg,
		Schema:      env.schema,
		Source:      source,
		Store:       env.store,
		Ledger:      env.kit.Ledger(),
		Logger:      env.logger,
		CodeVersion: "test",
	})
	require.NoError(t, err)
	return p
}

func TestPipeline_EndToEnd(t *testing.T) {
	env := newStageEnv(t)
	ctx := context.Background()

	outcome, err := newTestPipeline(t, env, env.kit.Source()).Run(ctx)
	require.NoError(t, err)

	require.True(t, outcome.Result.Success())
	assert.Len(t, outcome.Result.Results, 7)
	for i, name := range stage.DefaultPlan().Stages {
		assert.Equal(t, name, outcome.Result.Results[i].StageName)
	}

	assert.GreaterOrEqual(t, outcome.Trainer.TrainAccuracy, 0.6)
	assert.Greater(t, outcome.Trainer.Metrics.F1, 0.0)
	assert.True(t, outcome.Evaluation.Accepted)
	assert.False(t, outcome.Evaluation.ProductionPresent)
	require.True(t, outcome.Pusher.Pushed)
	assert.Equal(t, "model-registry/preprocessor.json", outcome.Pusher.PreprocessorKey)

	// ledger
	rec, err := env.kit.Ledger().GetRun(ctx, outcome.Manifest.RunID)
	require.NoError(t, err)
	assert.Equal(t, ports.RunStatusSucceeded, rec.Status)
	results, err := env.kit.Ledger().GetStageResults(ctx, outcome.Manifest.RunID)
	require.NoError(t, err)
	assert.Len(t, results, 7)
	eval, ok := env.kit.Ledger().Evaluation(outcome.Manifest.RunID)
	require.True(t, ok)
	assert.True(t, eval.Accepted)

	assert.FileExists(t, env.cfg.Paths.RunReport())

	// the pushed bundle scores the cleaned table on its own
	data, err := env.store.Get(ctx, env.cfg.Registry.ProductionModelKey)
	require.NoError(t, err)
	model, err := ml.UnmarshalModel(data)
	require.NoError(t, err)
	cleaned, err := tabular.ReadCSV(outcome.Cleaning.CleanedDataPath)
	require.NoError(t, err)
	labels, err := model.PredictLabels(cleaned.Drop(env.schema.TargetColumn))
	require.NoError(t, err)
	require.Len(t, labels, 100)
	for _, l := range labels {
		assert.Contains(t, []string{testkit.LabelIntrovert, testkit.LabelExtrovert}, l)
	}
}

func TestPipeline_SecondIdenticalRunIsNotPromoted(t *testing.T) {
	env := newStageEnv(t)
	ctx := context.Background()

	first, err := newTestPipeline(t, env, env.kit.Source()).Run(ctx)
	require.NoError(t, err)
	require.True(t, first.Pusher.Pushed)

	env.cfg = env.kit.Config(env.cfg.Paths.Root, testRunTime.Add(time.Minute))
	second, err := newTestPipeline(t, env, env.kit.Source()).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Manifest.Fingerprint.Fingerprint, second.Manifest.Fingerprint.Fingerprint)
	assert.NotEqual(t, first.Manifest.RunID, second.Manifest.RunID)
	assert.True(t, second.Evaluation.ProductionPresent)
	assert.InDelta(t, first.Trainer.Metrics.F1, second.Evaluation.ProductionModelF1, 1e-12)
	assert.False(t, second.Evaluation.Accepted)
	assert.False(t, second.Pusher.Pushed)

	runs, err := env.kit.Ledger().ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestPipeline_EmptySourceFailsAtIngestion(t *testing.T) {
	env := newStageEnv(t)
	ctx := context.Background()

	outcome, err := newTestPipeline(t, env, testkit.NewMemorySource(nil)).Run(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.CodeIngestionError, errors.GetCode(err))

	require.NotNil(t, outcome)
	assert.Len(t, outcome.Result.Results, 1)
	assert.Nil(t, outcome.Ingestion)

	rec, err := env.kit.Ledger().GetRun(ctx, outcome.Manifest.RunID)
	require.NoError(t, err)
	assert.Equal(t, ports.RunStatusFailed, rec.Status)
	assert.Equal(t, errors.CodeIngestionError, rec.ErrorCode)
}

func TestPipeline_InvalidTableStopsAtCleaning(t *testing.T) {
	env := newStageEnv(t)
	table := testkit.NewPersonalityDataGenerator(testkit.DefaultPersonalityConfig()).Generate()

	outcome, err := newTestPipeline(t, env, testkit.NewMemorySource(table.Drop("Post_frequency"))).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	failed, ok := outcome.Result.FailedStage()
	require.True(t, ok)
	assert.Equal(t, stage.StageCleaning, failed.StageName)
	assert.Len(t, outcome.Result.Results, 3)
	require.NotNil(t, outcome.Validation)
	assert.False(t, outcome.Validation.Status)
	assert.Nil(t, outcome.Pusher)

	// report is still written for failed runs
	assert.FileExists(t, env.cfg.Paths.RunReport())
}

func TestNewPipeline_RequiresDependencies(t *testing.T) {
	_, err := NewPipeline(PipelineDeps{})
	assert.Error(t, err)
}
