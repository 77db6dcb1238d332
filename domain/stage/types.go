package stage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"mlpipe/domain/core"
)

// StageName represents a named stage in the pipeline
type StageName string

// Predefined stage names, in execution order
const (
	StageIngestion          StageName = "data_ingestion"
	StageValidation         StageName = "data_validation"
	StageCleaning           StageName = "data_cleaning"
	StageFeatureEngineering StageName = "feature_engineering"
	StageModelTrainer       StageName = "model_trainer"
	StageModelEvaluation    StageName = "model_evaluation"
	StageModelPusher        StageName = "model_pusher"
)

// StagePlan is the ordered list of stages a run executes
type StagePlan struct {
	Stages []StageName `json:"stages"`
}

// DefaultPlan returns the seven training stages in order
func DefaultPlan() *StagePlan {
	return &StagePlan{Stages: []StageName{
		StageIngestion,
		StageValidation,
		StageCleaning,
		StageFeatureEngineering,
		StageModelTrainer,
		StageModelEvaluation,
		StageModelPusher,
	}}
}

// Hash computes a deterministic hash of the stage plan; order matters
func (p *StagePlan) Hash() core.Hash {
	names := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		names[i] = string(s)
	}
	sum := sha256.Sum256([]byte(strings.Join(names, ",")))
	return core.Hash(hex.EncodeToString(sum[:]))
}

// Validate checks if the stage plan is valid
func (p *StagePlan) Validate() error {
	if len(p.Stages) == 0 {
		return core.NewValidationError("stage_plan", "must contain at least one stage")
	}

	seen := make(map[StageName]bool)
	for _, s := range p.Stages {
		if s == "" {
			return core.NewValidationError("stage", "name cannot be empty")
		}
		if seen[s] {
			return core.NewValidationError("stage", "duplicate stage name: "+string(s))
		}
		seen[s] = true
	}
	return nil
}

// StageResult represents the outcome of one stage execution
type StageResult struct {
	StageName StageName      `json:"stage_name"`
	Success   bool           `json:"success"`
	ErrorCode string         `json:"error_code,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartedAt core.Timestamp `json:"started_at"`
	Duration  int64          `json:"duration_ms"`
}

// NewStageResult builds a result from a finished stage; err == nil means success
func NewStageResult(name StageName, started time.Time, code string, err error) StageResult {
	r := StageResult{
		StageName: name,
		Success:   err == nil,
		StartedAt: core.NewTimestamp(started),
		Duration:  time.Since(started).Milliseconds(),
	}
	if err != nil {
		r.ErrorCode = code
		r.Error = err.Error()
	}
	return r
}

// PipelineResult contains the results of executing a stage plan
type PipelineResult struct {
	Plan    *StagePlan      `json:"plan"`
	Results []StageResult   `json:"results"`
	Overall PipelineSummary `json:"overall"`
}

// PipelineSummary provides high-level pipeline statistics
type PipelineSummary struct {
	TotalStages   int   `json:"total_stages"`
	Successful    int   `json:"successful"`
	Failed        int   `json:"failed"`
	TotalDuration int64 `json:"total_duration_ms"`
}

// NewPipelineResult creates a new pipeline result
func NewPipelineResult(plan *StagePlan) *PipelineResult {
	return &PipelineResult{
		Plan:    plan,
		Results: make([]StageResult, 0, len(plan.Stages)),
	}
}

// AddResult adds a stage result and updates summary
func (r *PipelineResult) AddResult(result StageResult) {
	r.Results = append(r.Results, result)
	r.Overall.TotalStages++

	if result.Success {
		r.Overall.Successful++
	} else {
		r.Overall.Failed++
	}

	r.Overall.TotalDuration += result.Duration
}

// Success returns true if all stages succeeded
func (r *PipelineResult) Success() bool {
	return r.Overall.Failed == 0
}

// FailedStage returns the first failed result, if any
func (r *PipelineResult) FailedStage() (StageResult, bool) {
	for _, res := range r.Results {
		if !res.Success {
			return res, true
		}
	}
	return StageResult{}, false
}
