package ml

import (
	"fmt"
	"math"

	"mlpipe/domain/core"
)

// BinLabels name the tertile bins in ascending order
var BinLabels = []string{"Low", "Medium", "High"}

// TertileEdges returns the four quantile edges splitting values into three
// equally populated bins. Repeated edges are an error.
func TertileEdges(values []float64) ([]float64, error) {
	edges, err := Quantiles(values, 0, 1.0/3, 2.0/3, 1)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("%w: %v", core.ErrUniqueBinEdges, edges)
		}
	}
	return edges, nil
}

// BinIndex places v into right-closed bins (e[i], e[i+1]], with the lowest edge
// included in the first bin. Values outside the edges and missing values give -1.
func BinIndex(edges []float64, v float64) int {
	if math.IsNaN(v) || len(edges) < 2 {
		return -1
	}
	if v == edges[0] {
		return 0
	}
	for i := 0; i+1 < len(edges); i++ {
		if v > edges[i] && v <= edges[i+1] {
			return i
		}
	}
	return -1
}

// Cut labels each value with its bin, "" when it falls outside every bin
func Cut(values []float64, edges []float64, labels []string) ([]string, error) {
	if len(labels) != len(edges)-1 {
		return nil, fmt.Errorf("%d labels for %d bins", len(labels), len(edges)-1)
	}
	out := make([]string, len(values))
	for i, v := range values {
		if b := BinIndex(edges, v); b >= 0 {
			out[i] = labels[b]
		}
	}
	return out, nil
}
