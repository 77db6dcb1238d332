package run

import (
	"mlpipe/domain/core"
	"mlpipe/domain/stage"
)

// RunManifest describes everything that determines one pipeline run.
// It is recorded before any stage executes.
type RunManifest struct {
	RunID         core.RunID      `json:"run_id"`
	PipelineName  string          `json:"pipeline_name"`
	Stamp         string          `json:"stamp"` // artifact directory name for the run
	SchemaHash    core.SchemaHash `json:"schema_hash"`
	ConfigHash    core.ConfigHash `json:"config_hash"`
	StagePlanHash core.Hash       `json:"stage_plan_hash"`
	Seed          int64           `json:"seed"`
	CodeVersion   string          `json:"code_version"`
	Fingerprint   RunFingerprint  `json:"fingerprint"`
	CreatedAt     core.Timestamp  `json:"created_at"`
}

// NewRunManifest creates a run manifest
func NewRunManifest(
	runID core.RunID,
	pipelineName string,
	createdAt core.Timestamp,
	schemaHash core.SchemaHash,
	configHash core.ConfigHash,
	plan *stage.StagePlan,
	seed int64,
	codeVersion string,
) *RunManifest {
	planHash := plan.Hash()

	return &RunManifest{
		RunID:         runID,
		PipelineName:  pipelineName,
		Stamp:         createdAt.Stamp(),
		SchemaHash:    schemaHash,
		ConfigHash:    configHash,
		StagePlanHash: planHash,
		Seed:          seed,
		CodeVersion:   codeVersion,
		Fingerprint:   NewRunFingerprint(schemaHash, configHash, planHash, seed, codeVersion),
		CreatedAt:     createdAt,
	}
}

// Validate checks if the manifest is complete
func (r *RunManifest) Validate() error {
	if core.ID(r.RunID).IsEmpty() {
		return core.NewValidationError("run_manifest", "run_id cannot be empty")
	}
	if r.PipelineName == "" {
		return core.NewValidationError("run_manifest", "pipeline_name cannot be empty")
	}
	if r.SchemaHash == "" {
		return core.NewValidationError("run_manifest", "schema_hash cannot be empty")
	}
	if r.ConfigHash == "" {
		return core.NewValidationError("run_manifest", "config_hash cannot be empty")
	}
	if r.CodeVersion == "" {
		return core.NewValidationError("run_manifest", "code_version cannot be empty")
	}
	return nil
}
