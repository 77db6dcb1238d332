package ml

import (
	"fmt"

	"mlpipe/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each column and divides by its population standard deviation.
// A zero-variance column keeps scale 1.
type StandardScaler struct {
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
	NSamples int       `json:"n_samples_seen"`
}

// Fit learns per-column mean and scale from x
func (s *StandardScaler) Fit(x mat.Matrix) error {
	rows, cols := x.Dims()
	if rows == 0 {
		return core.ErrEmptyDataset
	}
	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		if std == 0 {
			std = 1
		}
		s.Scale[j] = std
	}
	s.NSamples = rows
	return nil
}

// Transform returns a scaled copy of x
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if len(s.Mean) == 0 {
		return nil, core.ErrNotFitted
	}
	rows, cols := x.Dims()
	if cols != len(s.Mean) {
		return nil, fmt.Errorf("%w: scaler fitted on %d columns, got %d", core.ErrFeatureMismatch, len(s.Mean), cols)
	}
	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out, nil
}

// FitTransform fits on x and scales it
func (s *StandardScaler) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}
