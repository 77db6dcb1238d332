package ml

import (
	"fmt"

	"mlpipe/domain/core"
	"mlpipe/domain/dataset"
)

// PolynomialFeatures is a degree-2, interaction-only expansion without bias:
// the inputs themselves followed by every pairwise product x_i*x_j, i < j.
type PolynomialFeatures struct {
	Inputs []string `json:"inputs"`
	Pairs  [][2]int `json:"pairs"`
}

// Fit records the input columns and enumerates the pairs
func (p *PolynomialFeatures) Fit(inputs []string) error {
	if len(inputs) < 2 {
		return fmt.Errorf("polynomial features need at least two inputs, got %d", len(inputs))
	}
	p.Inputs = append([]string(nil), inputs...)
	p.Pairs = p.Pairs[:0]
	for i := 0; i < len(inputs); i++ {
		for j := i + 1; j < len(inputs); j++ {
			p.Pairs = append(p.Pairs, [2]int{i, j})
		}
	}
	return nil
}

// OutputNames lists the expanded feature names, products as "a b"
func (p *PolynomialFeatures) OutputNames() []string {
	names := append([]string(nil), p.Inputs...)
	for _, pair := range p.Pairs {
		names = append(names, p.Inputs[pair[0]]+" "+p.Inputs[pair[1]])
	}
	return names
}

// Transform appends the pairwise product columns to a copy of table.
// The degree-one outputs are the input columns themselves and are left in place.
func (p *PolynomialFeatures) Transform(table *dataset.Table) (*dataset.Table, error) {
	if len(p.Inputs) == 0 {
		return nil, core.ErrNotFitted
	}
	inputs := make([][]float64, len(p.Inputs))
	for i, name := range p.Inputs {
		vals, err := table.Numeric(name)
		if err != nil {
			return nil, err
		}
		inputs[i] = vals
	}

	out := table.Clone()
	for _, pair := range p.Pairs {
		a, b := inputs[pair[0]], inputs[pair[1]]
		prod := make([]float64, len(a))
		for r := range a {
			prod[r] = a[r] * b[r]
		}
		name := p.Inputs[pair[0]] + " " + p.Inputs[pair[1]]
		if err := out.Add(dataset.NewNumericColumn(name, prod)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
