package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mlpipe/adapters/tabular"
	"mlpipe/domain/artifact"
	"mlpipe/domain/dataset"
	"mlpipe/domain/schema"
	"mlpipe/domain/stage"
	"mlpipe/internal"
	"mlpipe/internal/config"
	"mlpipe/internal/errors"
	"mlpipe/internal/profiling"

	"gopkg.in/yaml.v3"
)

// ValidationReport is the YAML document the validation stage writes
type ValidationReport struct {
	ValidationStatus bool                      `yaml:"validation_status"`
	Message          string                    `yaml:"message"`
	Rows             int                       `yaml:"rows"`
	Columns          []profiling.ColumnProfile `yaml:"columns"`
}

// Validation checks the ingested table against the schema
type Validation struct {
	cfg      *config.Config
	schema   *schema.Schema
	profiler *profiling.DataProfiler
	logger   *internal.Logger
}

// NewValidation creates the validation stage
func NewValidation(cfg *config.Config, sch *schema.Schema, logger *internal.Logger) *Validation {
	return &Validation{
		cfg:      cfg,
		schema:   sch,
		profiler: profiling.NewDataProfiler(),
		logger:   logger.With("validation"),
	}
}

// Run validates the ingested table and writes the report. A table that fails
// the checks is reported through the artifact, not as an error.
func (s *Validation) Run(ctx context.Context, in artifact.IngestionArtifact) (artifact.ValidationArtifact, error) {
	table, err := tabular.ReadCSV(in.IngestedDataPath)
	if err != nil {
		return artifact.ValidationArtifact{}, errors.Validation(string(stage.StageValidation), "failed to read ingested data", err)
	}

	failures := CheckSchema(table, s.schema)
	status := len(failures) == 0
	message := strings.Join(failures, "; ")
	if status {
		s.logger.Info("Table matches schema (%d rows, %d columns)", table.Len(), table.Width())
	} else {
		s.logger.Warn("Table does not match schema: %s", message)
	}

	report := ValidationReport{
		ValidationStatus: status,
		Message:          message,
		Rows:             table.Len(),
		Columns:          s.profiler.ProfileTable(table),
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return artifact.ValidationArtifact{}, errors.Validation(string(stage.StageValidation), "failed to encode report", err)
	}

	reportPath := s.cfg.Paths.ValidationReport()
	err = writeBoth(reportPath, func(p string) error {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		return os.WriteFile(p, data, 0644)
	})
	if err != nil {
		return artifact.ValidationArtifact{}, errors.Validation(string(stage.StageValidation), "failed to write report", err)
	}

	return artifact.ValidationArtifact{
		Status:     status,
		Message:    message,
		ReportPath: reportPath.Path,
	}, nil
}

// CheckSchema returns one message per failed check; none means the table conforms
func CheckSchema(table *dataset.Table, sch *schema.Schema) []string {
	var failures []string

	if table.Width() != len(sch.Columns) {
		failures = append(failures, fmt.Sprintf("expected %d columns, found %d", len(sch.Columns), table.Width()))
	}

	var missingNum, mistyped []string
	for _, name := range sch.NumericalColumns {
		col, err := table.Column(name)
		if err != nil {
			missingNum = append(missingNum, name)
			continue
		}
		if !col.IsNumeric() {
			mistyped = append(mistyped, name)
		}
	}
	if len(missingNum) > 0 {
		failures = append(failures, fmt.Sprintf("missing numerical columns: %v", missingNum))
	}
	if len(mistyped) > 0 {
		failures = append(failures, fmt.Sprintf("non-numeric numerical columns: %v", mistyped))
	}

	var missingCat []string
	for _, name := range sch.CategoricalColumns {
		if !table.Has(name) {
			missingCat = append(missingCat, name)
		}
	}
	if len(missingCat) > 0 {
		failures = append(failures, fmt.Sprintf("missing categorical columns: %v", missingCat))
	}

	if !table.Has(sch.TargetColumn) {
		failures = append(failures, fmt.Sprintf("missing target column: %s", sch.TargetColumn))
	}
	return failures
}
