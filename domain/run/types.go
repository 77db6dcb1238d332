package run

import (
	"crypto/sha256"
	"fmt"

	"mlpipe/domain/core"
)

// RunFingerprint ensures deterministic replay
type RunFingerprint struct {
	SchemaHash    core.SchemaHash `json:"schema_hash"`
	ConfigHash    core.ConfigHash `json:"config_hash"`
	StagePlanHash core.Hash       `json:"stage_plan_hash"`
	Seed          int64           `json:"seed"`
	CodeVersion   string          `json:"code_version"`
	Fingerprint   core.Hash       `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(schemaHash core.SchemaHash, configHash core.ConfigHash,
	stagePlanHash core.Hash, seed int64, codeVersion string) RunFingerprint {

	return RunFingerprint{
		SchemaHash:    schemaHash,
		ConfigHash:    configHash,
		StagePlanHash: stagePlanHash,
		Seed:          seed,
		CodeVersion:   codeVersion,
		Fingerprint:   computeRunFingerprint(schemaHash, configHash, stagePlanHash, seed, codeVersion),
	}
}

// Two runs with equal fingerprints over the same source data produce the same artifacts
func computeRunFingerprint(schemaHash core.SchemaHash, configHash core.ConfigHash,
	stagePlanHash core.Hash, seed int64, codeVersion string) core.Hash {

	data := fmt.Sprintf("schema:%s|config:%s|stage_plan:%s|seed:%d|code:%s",
		schemaHash, configHash, stagePlanHash, seed, codeVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
