package ml

import (
	"math"
)

// DefaultIQRFactor is the Tukey fence multiplier
const DefaultIQRFactor = 1.5

// Bounds is a closed clipping interval
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// IQRBounds returns [Q1 - 1.5*IQR, Q3 + upperFactor*IQR] over the non-missing values
func IQRBounds(values []float64, upperFactor float64) (Bounds, error) {
	q, err := Quantiles(values, 0.25, 0.75)
	if err != nil {
		return Bounds{}, err
	}
	iqr := q[1] - q[0]
	return Bounds{
		Lower: q[0] - DefaultIQRFactor*iqr,
		Upper: q[1] + upperFactor*iqr,
	}, nil
}

// Clip returns a copy of values clipped to b; missing cells stay missing
func (b Bounds) Clip(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case v < b.Lower:
			out[i] = b.Lower
		case v > b.Upper:
			out[i] = b.Upper
		default:
			out[i] = v
		}
	}
	return out
}

// CapOutliers clips values to their IQR fences
func CapOutliers(values []float64, upperFactor float64) ([]float64, Bounds, error) {
	b, err := IQRBounds(values, upperFactor)
	if err != nil {
		return nil, Bounds{}, err
	}
	return b.Clip(values), b, nil
}
