package ml

import (
	"math"
	"sort"

	"mlpipe/domain/core"
)

// Quantile returns the q-th quantile of the non-missing values using linear
// interpolation between closest ranks (Hyndman-Fan type 7).
func Quantile(values []float64, q float64) (float64, error) {
	sorted := presentSorted(values)
	if len(sorted) == 0 {
		return math.NaN(), core.ErrInsufficientData
	}
	return quantileSorted(sorted, q), nil
}

// Quantiles evaluates several quantiles with one sort
func Quantiles(values []float64, qs ...float64) ([]float64, error) {
	sorted := presentSorted(values)
	if len(sorted) == 0 {
		return nil, core.ErrInsufficientData
	}
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = quantileSorted(sorted, q)
	}
	return out, nil
}

func quantileSorted(sorted []float64, q float64) float64 {
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	h := q * float64(len(sorted)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func presentSorted(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
