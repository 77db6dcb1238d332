package testkit

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"mlpipe/domain/artifact"
	"mlpipe/domain/core"
	"mlpipe/domain/dataset"
	"mlpipe/domain/run"
	"mlpipe/domain/stage"
	"mlpipe/internal/config"
	"mlpipe/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	ledger *InMemoryLedgerAdapter // Shared ledger instance
	source *MemorySource
}

// NewTestKit creates a test kit whose source serves the default synthetic table
func NewTestKit() *TestKit {
	table := NewPersonalityDataGenerator(DefaultPersonalityConfig()).Generate()
	return &TestKit{
		ledger: NewInMemoryLedgerAdapter(),
		source: NewMemorySource(table),
	}
}

// Source returns the in-memory document source
func (t *TestKit) Source() *MemorySource {
	return t.source
}

// Ledger returns the shared in-memory run ledger
func (t *TestKit) Ledger() *InMemoryLedgerAdapter {
	return t.ledger
}

// Config returns a valid configuration rooted at root, using the local object
// store and a fixed run time
func (t *TestKit) Config(root string, at time.Time) *config.Config {
	createdAt := core.NewTimestamp(at)
	return &config.Config{
		Pipeline: config.PipelineConfig{Name: "personality", ArtifactDir: root, CreatedAt: createdAt},
		Source:   config.SourceConfig{DatabaseName: "personality", CollectionName: "personality_data"},
		Store: config.StoreConfig{
			Backend:  config.StoreLocal,
			Bucket:   "personality-model-bucket",
			LocalDir: filepath.Join(root, "bucket"),
		},
		Split:    config.SplitConfig{TestSize: 0.2, Seed: 42},
		Trainer:  config.TrainerConfig{MaxIter: 1000, Solver: config.SolverLBFGS, C: 1.0, ExpectedScore: 0.6},
		Registry: config.RegistryConfig{ProductionModelKey: "model-registry/model.json"},
		Ledger:   config.LedgerConfig{Driver: "sqlite", DSN: filepath.Join(root, "ledger.db")},
		Report:   config.ReportConfig{Enabled: true},
		LogLevel: "ERROR",
		Paths:    config.NewPaths(root, createdAt.Stamp()),
	}
}

// MemorySource implements ports.DocumentSource over a fixed table
type MemorySource struct {
	table  *dataset.Table
	Err    error
	Calls  int
	Closed bool
}

// NewMemorySource creates a source that exports table for any collection
func NewMemorySource(table *dataset.Table) *MemorySource {
	return &MemorySource{table: table}
}

// ExportCollection returns a copy of the table, or Err when set
func (s *MemorySource) ExportCollection(ctx context.Context, database, collection string) (*dataset.Table, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if s.table == nil {
		return dataset.NewTable(), nil
	}
	return s.table.Clone(), nil
}

// Close marks the source closed
func (s *MemorySource) Close(ctx context.Context) error {
	s.Closed = true
	return nil
}

// InMemoryLedgerAdapter implements ports.RunLedger with in-memory storage
type InMemoryLedgerAdapter struct {
	runs        map[core.RunID]*ports.RunRecord
	stages      map[core.RunID][]stage.StageResult
	evaluations map[core.RunID]artifact.EvaluationArtifact
	mu          sync.RWMutex
}

func NewInMemoryLedgerAdapter() *InMemoryLedgerAdapter {
	return &InMemoryLedgerAdapter{
		runs:        make(map[core.RunID]*ports.RunRecord),
		stages:      make(map[core.RunID][]stage.StageResult),
		evaluations: make(map[core.RunID]artifact.EvaluationArtifact),
	}
}

func (s *InMemoryLedgerAdapter) RecordRun(ctx context.Context, manifest *run.RunManifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[manifest.RunID]; exists {
		return fmt.Errorf("run %s already recorded", manifest.RunID)
	}
	s.runs[manifest.RunID] = &ports.RunRecord{
		RunID:       manifest.RunID,
		Pipeline:    manifest.PipelineName,
		Stamp:       manifest.Stamp,
		Fingerprint: manifest.Fingerprint.Fingerprint,
		Seed:        manifest.Seed,
		Status:      ports.RunStatusRunning,
		CreatedAt:   manifest.CreatedAt,
	}
	return nil
}

func (s *InMemoryLedgerAdapter) RecordStage(ctx context.Context, runID core.RunID, result stage.StageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; !exists {
		return fmt.Errorf("run %s: %w", runID, core.ErrNotFound)
	}
	s.stages[runID] = append(s.stages[runID], result)
	return nil
}

func (s *InMemoryLedgerAdapter) RecordEvaluation(ctx context.Context, runID core.RunID, metrics artifact.MetricArtifact, eval artifact.EvaluationArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluations[runID] = eval
	return nil
}

func (s *InMemoryLedgerAdapter) FinishRun(ctx context.Context, runID core.RunID, status string, errorCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.runs[runID]
	if !exists {
		return fmt.Errorf("run %s: %w", runID, core.ErrNotFound)
	}
	rec.Status = status
	rec.ErrorCode = errorCode
	rec.FinishedAt = core.Now()
	return nil
}

func (s *InMemoryLedgerAdapter) GetRun(ctx context.Context, runID core.RunID) (*ports.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.runs[runID]
	if !exists {
		return nil, fmt.Errorf("run %s: %w", runID, core.ErrNotFound)
	}
	out := *rec
	return &out, nil
}

func (s *InMemoryLedgerAdapter) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ports.RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Time().After(out[j].CreatedAt.Time())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryLedgerAdapter) GetStageResults(ctx context.Context, runID core.RunID) ([]stage.StageResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]stage.StageResult(nil), s.stages[runID]...), nil
}

// Evaluation returns the recorded gate decision of a run
func (s *InMemoryLedgerAdapter) Evaluation(runID core.RunID) (artifact.EvaluationArtifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	eval, ok := s.evaluations[runID]
	return eval, ok
}
