package ml

import (
	"sort"

	"mlpipe/domain/dataset"
)

// OneHot expands a categorical column into boolean dummies named <col>_<category>,
// categories sorted. With dropFirst the first category gets no column.
// Missing cells are false in every dummy.
func OneHot(col *dataset.Column, dropFirst bool) []*dataset.Column {
	seen := make(map[string]bool)
	for _, v := range col.Str {
		if v != "" {
			seen[v] = true
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	if dropFirst && len(categories) > 0 {
		categories = categories[1:]
	}

	return Dummies(col.Name, col.Str, categories)
}

// Dummies builds one boolean column per category, in the given order
func Dummies(prefix string, values []string, categories []string) []*dataset.Column {
	out := make([]*dataset.Column, len(categories))
	for j, c := range categories {
		flags := make([]bool, len(values))
		for i, v := range values {
			flags[i] = v == c
		}
		out[j] = dataset.NewBooleanColumn(prefix+"_"+c, flags)
	}
	return out
}
