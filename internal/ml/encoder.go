package ml

import (
	"fmt"
	"sort"

	"mlpipe/domain/core"
)

// LabelEncoder maps string labels to 0..k-1 in sorted label order
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// Fit records the distinct non-empty labels, sorted
func (e *LabelEncoder) Fit(labels []string) error {
	seen := make(map[string]bool)
	for _, l := range labels {
		if l == "" {
			return fmt.Errorf("%w: target has missing labels", core.ErrInsufficientData)
		}
		seen[l] = true
	}
	if len(seen) == 0 {
		return core.ErrEmptyDataset
	}
	e.Classes = make([]string, 0, len(seen))
	for l := range seen {
		e.Classes = append(e.Classes, l)
	}
	sort.Strings(e.Classes)
	return nil
}

// Transform encodes labels; unknown labels are an error
func (e *LabelEncoder) Transform(labels []string) ([]float64, error) {
	if len(e.Classes) == 0 {
		return nil, core.ErrNotFitted
	}
	index := make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		index[c] = i
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		code, ok := index[l]
		if !ok {
			return nil, fmt.Errorf("unknown label %q", l)
		}
		out[i] = float64(code)
	}
	return out, nil
}

// FitTransform fits and encodes in one step
func (e *LabelEncoder) FitTransform(labels []string) ([]float64, error) {
	if err := e.Fit(labels); err != nil {
		return nil, err
	}
	return e.Transform(labels)
}

// Inverse maps a code back to its label
func (e *LabelEncoder) Inverse(code int) (string, error) {
	if code < 0 || code >= len(e.Classes) {
		return "", fmt.Errorf("label code %d out of range", code)
	}
	return e.Classes[code], nil
}
