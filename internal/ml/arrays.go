package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// WithTarget appends y as the last column of x
func WithTarget(x mat.Matrix, y []float64) (*mat.Dense, error) {
	r, c := x.Dims()
	if len(y) != r {
		return nil, fmt.Errorf("target has %d rows, features have %d", len(y), r)
	}
	out := mat.NewDense(r, c+1, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(x)
	out.SetCol(c, y)
	return out, nil
}

// SplitTarget separates a persisted array into features and its last column
func SplitTarget(m *mat.Dense) (*mat.Dense, []float64, error) {
	r, c := m.Dims()
	if c < 2 {
		return nil, nil, fmt.Errorf("array has %d columns, need features and a target", c)
	}
	x := mat.DenseCopyOf(m.Slice(0, r, 0, c-1))
	y := mat.Col(nil, c-1, m)
	return x, y, nil
}
