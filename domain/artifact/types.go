// Package artifact holds the records stages hand to each other.
// Each is built once by the stage that owns it and only read afterwards.
package artifact

import (
	"mlpipe/internal/ml"
)

// IngestionArtifact points at the raw table exported from the document store
type IngestionArtifact struct {
	IngestedDataPath string `json:"ingested_data_path"`
	BucketName       string `json:"bucket_name"`
	Rows             int    `json:"rows"`
	Columns          int    `json:"columns"`
}

// ValidationArtifact carries the schema check outcome; a failed check is data, not an error
type ValidationArtifact struct {
	Status     bool   `json:"validation_status"`
	Message    string `json:"message"`
	ReportPath string `json:"validation_report_file_path"`
}

// CleaningArtifact points at the cleaned table
type CleaningArtifact struct {
	CleanedDataPath string   `json:"cleaned_data_file_path"`
	TargetClasses   []string `json:"target_classes"`
}

// FeatureEngineeringArtifact points at the engineered arrays and holds the fitted transforms.
// BinEdges are fit on the full cleaned table before the split; Poly and Scaler on train only.
type FeatureEngineeringArtifact struct {
	TrainPath        string                `json:"train_file_path"`
	TestPath         string                `json:"test_file_path"`
	PreprocessorPath string                `json:"preprocessor_file_path"`
	BinEdges         []float64             `json:"bin_edges"`
	Scaler           ml.StandardScaler     `json:"scaler"`
	Poly             ml.PolynomialFeatures `json:"poly_features"`
	FeatureNames     []string              `json:"feature_names"`
}

// MetricArtifact holds binary classification scores
type MetricArtifact struct {
	Accuracy  float64 `json:"accuracy_score"`
	F1        float64 `json:"f1_score"`
	Precision float64 `json:"precision_score"`
	Recall    float64 `json:"recall_score"`
}

// FromMetrics converts computed metrics into the artifact form
func FromMetrics(m ml.ClassificationMetrics) MetricArtifact {
	return MetricArtifact{Accuracy: m.Accuracy, F1: m.F1, Precision: m.Precision, Recall: m.Recall}
}

// TrainerArtifact points at the persisted candidate model
type TrainerArtifact struct {
	TrainedModelPath string         `json:"trained_model_file_path"`
	TrainAccuracy    float64        `json:"train_accuracy"`
	Metrics          MetricArtifact `json:"metric_artifact"`
}

// EvaluationArtifact records the promotion gate decision
type EvaluationArtifact struct {
	Accepted           bool    `json:"is_model_accepted"`
	Delta              float64 `json:"changed_accuracy"`
	TrainedModelF1     float64 `json:"trained_model_f1_score"`
	ProductionModelF1  float64 `json:"best_model_f1_score"`
	ProductionPresent  bool    `json:"production_model_present"`
	CandidateModelPath string  `json:"trained_model_path"`
	ProductionModelKey string  `json:"s3_model_path"`
}

// PusherArtifact records whether the production key was overwritten
type PusherArtifact struct {
	Pushed          bool   `json:"pushed"`
	Bucket          string `json:"bucket,omitempty"`
	ModelKey        string `json:"model_key,omitempty"`
	PreprocessorKey string `json:"preprocessor_key,omitempty"`
}
