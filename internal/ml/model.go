package ml

import (
	"encoding/json"
	"fmt"

	"mlpipe/domain/core"
	"mlpipe/domain/dataset"

	"gonum.org/v1/gonum/mat"
)

// Model bundles the fitted preprocessor with the classifier so a cleaned
// table can be scored without the training run's artifacts.
type Model struct {
	Preprocessor *Preprocessor      `json:"preprocessor"`
	Classifier   LogisticRegression `json:"classifier"`
}

// NFeatures is the width of the matrix the classifier expects
func (m *Model) NFeatures() int {
	return m.Classifier.NFeatures()
}

// PredictMatrix scores an already transformed feature matrix
func (m *Model) PredictMatrix(x mat.Matrix) ([]float64, error) {
	return m.Classifier.Predict(x)
}

// Predict transforms a cleaned table (without target) and predicts encoded labels
func (m *Model) Predict(table *dataset.Table) ([]float64, error) {
	if m.Preprocessor == nil {
		return nil, core.ErrNotFitted
	}
	x, err := m.Preprocessor.Transform(table)
	if err != nil {
		return nil, err
	}
	return m.Classifier.Predict(x)
}

// PredictLabels is Predict mapped back to the original target labels
func (m *Model) PredictLabels(table *dataset.Table) ([]string, error) {
	codes, err := m.Predict(table)
	if err != nil {
		return nil, err
	}
	enc := LabelEncoder{Classes: m.Preprocessor.TargetClasses}
	out := make([]string, len(codes))
	for i, c := range codes {
		if out[i], err = enc.Inverse(int(c)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Save writes the model as JSON
func (m *Model) Save(path string) error {
	return writeJSON(path, m)
}

// Marshal encodes the model for upload
func (m *Model) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// LoadModel reads a model written by Save
func LoadModel(path string) (*Model, error) {
	var m Model
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UnmarshalModel decodes a model downloaded from the object store
func UnmarshalModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if m.Classifier.NFeatures() == 0 {
		return nil, fmt.Errorf("%w: model has no coefficients", core.ErrNotFitted)
	}
	return &m, nil
}
