package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchema(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Personality", s.TargetColumn)
	assert.Len(t, s.Columns, 8)
	assert.Equal(t, "Time_spent_Alone", s.Columns[0].Name)
	assert.Equal(t, "float", s.Columns[0].Type)
	assert.Equal(t, []string{"Stage_fear", "Drained_after_socializing"}, s.CategoricalColumns)
	assert.Equal(t, 2.5, s.Features.OutlierUpperFactors["Post_frequency"])
	assert.Len(t, s.Features.Interactions, 3)
	assert.False(t, s.Hash().IsEmpty())
}

func TestLoad_MissingFileFallsBackToDefault(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Personality", s.TargetColumn)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	doc := `
columns:
  - a: float
  - b: category
  - y: category
numerical_columns: [a]
categorical_columns: [b]
target_column: y
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "y"}, s.ColumnNames())
}

func TestParse_RejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"numerical_columns not a list", "columns:\n  - a: float\nnumerical_columns: 5\ncategorical_columns: []\ntarget_column: a\n"},
		{"missing target", "columns:\n  - a: float\nnumerical_columns: [a]\ncategorical_columns: []\n"},
		{"column entry with two keys", "columns:\n  - {a: float, b: float}\nnumerical_columns: []\ncategorical_columns: []\ntarget_column: a\n"},
		{"undeclared numerical column", "columns:\n  - a: float\nnumerical_columns: [z]\ncategorical_columns: []\ntarget_column: a\n"},
		{"unknown interaction op", "columns:\n  - a: float\nnumerical_columns: [a]\ncategorical_columns: []\ntarget_column: a\nfeatures:\n  interactions:\n    - {name: x, op: sqrt, inputs: [a, a]}\n"},
		{"categorical bin column", "columns:\n  - a: float\n  - b: category\nnumerical_columns: [a]\ncategorical_columns: [b]\ntarget_column: a\nfeatures:\n  bin_column: b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
