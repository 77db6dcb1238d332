package report

import (
	"fmt"
	"os"
	"path/filepath"

	"mlpipe/domain/artifact"
	"mlpipe/domain/run"
	"mlpipe/domain/stage"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the run report workbook
const (
	SheetRun     = "Run"
	SheetStages  = "Stages"
	SheetMetrics = "Metrics"
)

// RunReport is everything a finished (or aborted) run can summarize.
// Artifacts of stages that did not run are nil.
type RunReport struct {
	Manifest   *run.RunManifest
	Stages     []stage.StageResult
	Validation *artifact.ValidationArtifact
	Trainer    *artifact.TrainerArtifact
	Evaluation *artifact.EvaluationArtifact
	Pusher     *artifact.PusherArtifact
}

// Write renders the report as an XLSX workbook at path
func Write(path string, r RunReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRun); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetStages, SheetMetrics} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := writeRunSheet(f, r); err != nil {
		return err
	}
	if err := writeStagesSheet(f, r.Stages); err != nil {
		return err
	}
	if err := writeMetricsSheet(f, r); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}

func writeRunSheet(f *excelize.File, r RunReport) error {
	var rows [][]interface{}
	if m := r.Manifest; m != nil {
		rows = append(rows,
			[]interface{}{"run_id", m.RunID.String()},
			[]interface{}{"pipeline", m.PipelineName},
			[]interface{}{"stamp", m.Stamp},
			[]interface{}{"seed", m.Seed},
			[]interface{}{"code_version", m.CodeVersion},
			[]interface{}{"schema_hash", m.SchemaHash.String()},
			[]interface{}{"config_hash", m.ConfigHash.String()},
			[]interface{}{"fingerprint", m.Fingerprint.Fingerprint.String()},
		)
	}
	if v := r.Validation; v != nil {
		rows = append(rows,
			[]interface{}{"validation_status", v.Status},
			[]interface{}{"validation_message", v.Message},
		)
	}
	if p := r.Pusher; p != nil {
		rows = append(rows, []interface{}{"pushed", p.Pushed})
		if p.Pushed {
			rows = append(rows, []interface{}{"model_key", p.ModelKey})
		}
	}
	return setRows(f, SheetRun, [][]interface{}{{"field", "value"}}, rows)
}

func writeStagesSheet(f *excelize.File, results []stage.StageResult) error {
	rows := make([][]interface{}, len(results))
	for i, res := range results {
		rows[i] = []interface{}{
			string(res.StageName), res.Success, res.ErrorCode, res.Error,
			res.StartedAt.String(), res.Duration,
		}
	}
	header := [][]interface{}{{"stage", "success", "error_code", "error", "started_at", "duration_ms"}}
	return setRows(f, SheetStages, header, rows)
}

func writeMetricsSheet(f *excelize.File, r RunReport) error {
	var rows [][]interface{}
	if t := r.Trainer; t != nil {
		rows = append(rows,
			[]interface{}{"train_accuracy", t.TrainAccuracy},
			[]interface{}{"test_accuracy", t.Metrics.Accuracy},
			[]interface{}{"test_f1", t.Metrics.F1},
			[]interface{}{"test_precision", t.Metrics.Precision},
			[]interface{}{"test_recall", t.Metrics.Recall},
		)
	}
	if e := r.Evaluation; e != nil {
		rows = append(rows,
			[]interface{}{"production_present", e.ProductionPresent},
			[]interface{}{"production_f1", e.ProductionModelF1},
			[]interface{}{"delta", e.Delta},
			[]interface{}{"accepted", e.Accepted},
		)
	}
	return setRows(f, SheetMetrics, [][]interface{}{{"metric", "value"}}, rows)
}

func setRows(f *excelize.File, sheet string, header, rows [][]interface{}) error {
	for i, row := range append(header, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
