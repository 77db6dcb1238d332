package config

import (
	"path/filepath"
	"strings"
)

// Directory and file names under a run directory
const (
	LatestDirName = "latest"

	IngestionDirName = "data_ingestion"
	DataFileName     = "data.csv"

	ValidationDirName    = "data_validation"
	ValidationReportName = "report.yaml"

	CleaningDirName     = "data_cleaning"
	CleanedDataDirName  = "cleaned"
	CleanedDataFileName = "cleaned.csv"

	FeatureDirName       = "feature_engineering"
	TrainDirName         = "train"
	TestDirName          = "test"
	TrainFileName        = "train.bin"
	TestFileName         = "test.bin"
	TransformerDirName   = "transformer"
	PreprocessorFileName = "preprocessor.json"

	TrainerDirName = "model_trainer"
	ModelFileName  = "model.json"

	RunReportFileName = "run_report.xlsx"
)

// Paths is every file location of one run. Each stage writes under RunDir and
// mirrors the same relative path under LatestDir.
type Paths struct {
	Root      string
	RunDir    string
	LatestDir string
}

// NewPaths lays out a run under root/stamp and root/latest
func NewPaths(root, stamp string) Paths {
	return Paths{
		Root:      root,
		RunDir:    filepath.Join(root, stamp),
		LatestDir: filepath.Join(root, LatestDirName),
	}
}

// StagePath is a file written by a stage, with its latest mirror
type StagePath struct {
	Path   string
	Latest string
}

func (p Paths) stage(parts ...string) StagePath {
	return StagePath{
		Path:   filepath.Join(append([]string{p.RunDir}, parts...)...),
		Latest: filepath.Join(append([]string{p.LatestDir}, parts...)...),
	}
}

// IngestedData is the raw exported table
func (p Paths) IngestedData() StagePath {
	return p.stage(IngestionDirName, DataFileName)
}

// ValidationReport is the YAML validation report
func (p Paths) ValidationReport() StagePath {
	return p.stage(ValidationDirName, ValidationReportName)
}

// CleanedData is the cleaned table
func (p Paths) CleanedData() StagePath {
	return p.stage(CleaningDirName, CleanedDataDirName, CleanedDataFileName)
}

// TrainArray is the engineered training matrix
func (p Paths) TrainArray() StagePath {
	return p.stage(FeatureDirName, TrainDirName, TrainFileName)
}

// TestArray is the engineered test matrix
func (p Paths) TestArray() StagePath {
	return p.stage(FeatureDirName, TestDirName, TestFileName)
}

// Preprocessor is the fitted feature transform bundle
func (p Paths) Preprocessor() StagePath {
	return p.stage(FeatureDirName, TransformerDirName, PreprocessorFileName)
}

// TrainedModel is the candidate model
func (p Paths) TrainedModel() StagePath {
	return p.stage(TrainerDirName, ModelFileName)
}

// RunReport is the XLSX summary of the run; it has no latest mirror
func (p Paths) RunReport() string {
	return filepath.Join(p.RunDir, RunReportFileName)
}

// Key maps a local artifact path to its object store key: the slash form of
// the path, anchored at the artifact root's base name.
func (p Paths) Key(path string) string {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "/")
	}
	return filepath.ToSlash(filepath.Join(filepath.Base(p.Root), rel))
}
