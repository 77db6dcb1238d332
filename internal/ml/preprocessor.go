package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mlpipe/domain/core"
	"mlpipe/domain/dataset"
	"mlpipe/domain/schema"

	"gonum.org/v1/gonum/mat"
)

// Interaction ops
const (
	OpRatioPlusOne = "ratio_plus_one" // a / (b + 1)
	OpBalanceIndex = "balance_index"  // (a + b - c) / 3
	OpProduct      = "product"        // a * b
)

// Preprocessor turns a cleaned feature table (no target) into the scaled model
// matrix: interaction features, tertile bin dummies of BinColumn, pairwise
// polynomial terms, then standard scaling.
type Preprocessor struct {
	InputColumns  []string             `json:"input_columns"`
	Interactions  []schema.Interaction `json:"interactions"`
	BinColumn     string               `json:"bin_column"`
	BinEdges      []float64            `json:"bin_edges"`
	Poly          PolynomialFeatures   `json:"poly_features"`
	Scaler        StandardScaler       `json:"scaler"`
	FeatureNames  []string             `json:"feature_names"`
	TargetClasses []string             `json:"target_classes,omitempty"`
}

// NewPreprocessor prepares an unfitted transform. Bin edges come from outside
// because they are computed on the full dataset, before any split.
func NewPreprocessor(features schema.Features, binEdges []float64) *Preprocessor {
	return &Preprocessor{
		Interactions: append([]schema.Interaction(nil), features.Interactions...),
		BinColumn:    features.BinColumn,
		BinEdges:     append([]float64(nil), binEdges...),
		Poly:         PolynomialFeatures{Inputs: append([]string(nil), features.PolyColumns...)},
	}
}

// Fit learns the polynomial layout, feature order and scaler from the training table
func (p *Preprocessor) Fit(train *dataset.Table) error {
	_, err := p.FitTransform(train)
	return err
}

// FitTransform fits on train and returns its scaled matrix
func (p *Preprocessor) FitTransform(train *dataset.Table) (*mat.Dense, error) {
	if train.Len() == 0 {
		return nil, core.ErrEmptyDataset
	}
	p.InputColumns = train.Names()
	if len(p.Poly.Inputs) > 0 {
		if err := p.Poly.Fit(p.Poly.Inputs); err != nil {
			return nil, err
		}
	}

	engineered, err := p.Engineer(train)
	if err != nil {
		return nil, err
	}
	p.FeatureNames = engineered.Names()

	raw, err := p.matrix(engineered)
	if err != nil {
		return nil, err
	}
	return p.Scaler.FitTransform(raw)
}

// Transform applies the fitted transform to a table with the training columns
func (p *Preprocessor) Transform(table *dataset.Table) (*mat.Dense, error) {
	if len(p.FeatureNames) == 0 {
		return nil, core.ErrNotFitted
	}
	for _, name := range p.InputColumns {
		if !table.Has(name) {
			return nil, core.NewColumnNotFoundError(name)
		}
	}
	engineered, err := p.Engineer(table)
	if err != nil {
		return nil, err
	}
	raw, err := p.matrix(engineered)
	if err != nil {
		return nil, err
	}
	return p.Scaler.Transform(raw)
}

// Engineer adds interaction, bin and polynomial columns to a copy of table, unscaled
func (p *Preprocessor) Engineer(table *dataset.Table) (*dataset.Table, error) {
	out := table.Clone()

	for _, in := range p.Interactions {
		col, err := interaction(out, in)
		if err != nil {
			return nil, fmt.Errorf("interaction %s: %w", in.Name, err)
		}
		if err := out.Add(col); err != nil {
			return nil, err
		}
	}

	if p.BinColumn != "" {
		values, err := out.Numeric(p.BinColumn)
		if err != nil {
			return nil, err
		}
		labels, err := Cut(values, p.BinEdges, BinLabels)
		if err != nil {
			return nil, err
		}
		for _, dummy := range Dummies(p.BinColumn+"_Binned", labels, BinLabels[1:]) {
			if err := out.Add(dummy); err != nil {
				return nil, err
			}
		}
	}

	if len(p.Poly.Pairs) > 0 {
		expanded, err := p.Poly.Transform(out)
		if err != nil {
			return nil, err
		}
		out = expanded
	}
	return out, nil
}

// matrix lays the engineered columns out in FeatureNames order
func (p *Preprocessor) matrix(table *dataset.Table) (*mat.Dense, error) {
	rows := table.Len()
	m := mat.NewDense(rows, len(p.FeatureNames), nil)
	for j, name := range p.FeatureNames {
		vals, err := table.Numeric(name)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			m.Set(i, j, v)
		}
	}
	return m, nil
}

func interaction(table *dataset.Table, in schema.Interaction) (*dataset.Column, error) {
	inputs := make([][]float64, len(in.Inputs))
	for i, name := range in.Inputs {
		vals, err := table.Numeric(name)
		if err != nil {
			return nil, err
		}
		inputs[i] = vals
	}

	var need int
	var fn func(r int) float64
	switch in.Op {
	case OpRatioPlusOne:
		need = 2
		fn = func(r int) float64 { return inputs[0][r] / (inputs[1][r] + 1) }
	case OpBalanceIndex:
		need = 3
		fn = func(r int) float64 { return (inputs[0][r] + inputs[1][r] - inputs[2][r]) / 3 }
	case OpProduct:
		need = 2
		fn = func(r int) float64 { return inputs[0][r] * inputs[1][r] }
	default:
		return nil, fmt.Errorf("unknown op %q", in.Op)
	}
	if len(inputs) != need {
		return nil, fmt.Errorf("op %s takes %d inputs, got %d", in.Op, need, len(inputs))
	}

	out := make([]float64, table.Len())
	for r := range out {
		out[r] = fn(r)
	}
	return dataset.NewNumericColumn(in.Name, out), nil
}

// Save writes the preprocessor as JSON
func (p *Preprocessor) Save(path string) error {
	return writeJSON(path, p)
}

// LoadPreprocessor reads a preprocessor written by Save
func LoadPreprocessor(path string) (*Preprocessor, error) {
	var p Preprocessor
	if err := readJSON(path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
