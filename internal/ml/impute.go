package ml

import (
	"fmt"
	"math"
	"sort"

	"mlpipe/domain/core"

	"github.com/montanaflynn/stats"
)

// MedianImpute fills missing cells with the median of the present ones
func MedianImpute(values []float64) ([]float64, float64, error) {
	present := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, 0, fmt.Errorf("%w: no values to take a median of", core.ErrInsufficientData)
	}
	median, err := stats.Median(present)
	if err != nil {
		return nil, 0, fmt.Errorf("median failed: %w", err)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = median
		} else {
			out[i] = v
		}
	}
	return out, median, nil
}

// ModeImpute fills missing cells with the most frequent value; ties go to the smallest
func ModeImpute(values []string) ([]string, string, error) {
	counts := make(map[string]int)
	for _, v := range values {
		if v != "" {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return nil, "", fmt.Errorf("%w: no values to take a mode of", core.ErrInsufficientData)
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	mode := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[mode] {
			mode = k
		}
	}

	out := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = mode
		} else {
			out[i] = v
		}
	}
	return out, mode, nil
}
