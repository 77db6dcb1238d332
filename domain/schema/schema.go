// Package schema loads the declarative dataset schema: which columns exist,
// which are numerical or categorical, the target, and the dataset-specific
// feature-engineering settings.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"mlpipe/domain/core"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed default_schema.yaml
var defaultSchema []byte

const documentSchemaURL = "https://mlpipe.schemas.local/dataset-schema.json"

// documentSchema constrains the shape of a schema file before it is decoded.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["columns", "numerical_columns", "categorical_columns", "target_column"],
  "properties": {
    "columns": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "minProperties": 1,
        "maxProperties": 1,
        "additionalProperties": {"type": "string"}
      }
    },
    "numerical_columns": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "categorical_columns": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "target_column": {"type": "string", "minLength": 1},
    "features": {
      "type": "object",
      "properties": {
        "bin_column": {"type": "string"},
        "poly_columns": {"type": "array", "items": {"type": "string"}},
        "outlier_upper_factors": {
          "type": "object",
          "additionalProperties": {"type": "number", "exclusiveMinimum": 0}
        },
        "interactions": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["name", "op", "inputs"],
            "properties": {
              "name": {"type": "string", "minLength": 1},
              "op": {"enum": ["ratio_plus_one", "balance_index", "product"]},
              "inputs": {"type": "array", "minItems": 2, "items": {"type": "string"}}
            }
          }
        }
      }
    }
  }
}`

// Column is one declared column and its dtype label
type Column struct {
	Name string
	Type string
}

// UnmarshalYAML decodes the single-key `- name: dtype` form
func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: column entry must be a single `name: type` pair", node.Line)
	}
	c.Name = node.Content[0].Value
	c.Type = node.Content[1].Value
	return nil
}

// Interaction declares a derived feature computed row-wise from existing columns
type Interaction struct {
	Name   string   `yaml:"name" json:"name"`
	Op     string   `yaml:"op" json:"op"`
	Inputs []string `yaml:"inputs" json:"inputs"`
}

// Features holds dataset-specific feature-engineering settings
type Features struct {
	BinColumn           string             `yaml:"bin_column"`
	PolyColumns         []string           `yaml:"poly_columns"`
	OutlierUpperFactors map[string]float64 `yaml:"outlier_upper_factors"`
	Interactions        []Interaction      `yaml:"interactions"`
}

// Schema is the decoded schema file
type Schema struct {
	Columns            []Column `yaml:"columns"`
	NumericalColumns   []string `yaml:"numerical_columns"`
	CategoricalColumns []string `yaml:"categorical_columns"`
	TargetColumn       string   `yaml:"target_column"`
	Features           Features `yaml:"features"`

	hash core.SchemaHash
}

// Hash identifies the exact schema document the run used
func (s *Schema) Hash() core.SchemaHash {
	return s.hash
}

// ColumnNames returns the declared column names in order
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Default returns the embedded schema for the personality dataset
func Default() (*Schema, error) {
	return Parse(defaultSchema)
}

// Load reads a schema file; an empty path or a missing file falls back to the embedded default
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default()
		}
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates the document shape, decodes it and checks cross-field consistency
func Parse(data []byte) (*Schema, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.hash = core.SchemaHash(core.NewHash(data))
	return &s, nil
}

// Validate checks that every referenced column is declared
func (s *Schema) Validate() error {
	declared := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if declared[c.Name] {
			return core.NewValidationError("schema", "duplicate column: "+c.Name)
		}
		declared[c.Name] = true
	}

	var undeclared []string
	for _, name := range s.NumericalColumns {
		if !declared[name] {
			undeclared = append(undeclared, name)
		}
	}
	for _, name := range s.CategoricalColumns {
		if !declared[name] {
			undeclared = append(undeclared, name)
		}
	}
	if !declared[s.TargetColumn] {
		undeclared = append(undeclared, s.TargetColumn)
	}
	if len(undeclared) > 0 {
		return core.NewValidationError("schema", "undeclared columns: "+strings.Join(undeclared, ", "))
	}

	numeric := make(map[string]bool, len(s.NumericalColumns))
	for _, name := range s.NumericalColumns {
		numeric[name] = true
	}
	if s.Features.BinColumn != "" && !numeric[s.Features.BinColumn] {
		return core.NewValidationError("schema", "bin_column must be numerical: "+s.Features.BinColumn)
	}
	for _, name := range s.Features.PolyColumns {
		if !numeric[name] {
			return core.NewValidationError("schema", "poly column must be numerical: "+name)
		}
	}
	for name := range s.Features.OutlierUpperFactors {
		if !numeric[name] {
			return core.NewValidationError("schema", "outlier factor for non-numerical column: "+name)
		}
	}
	return nil
}

func validateDocument(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse schema YAML: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("schema is not representable as JSON: %w", err)
	}
	var instance interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("schema JSON decode failed: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(documentSchemaURL, strings.NewReader(documentSchema)); err != nil {
		return fmt.Errorf("schema document load failed: %w", err)
	}
	compiled, err := c.Compile(documentSchemaURL)
	if err != nil {
		return fmt.Errorf("schema document compile failed: %w", err)
	}
	if err := compiled.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", core.ErrValidationNotSatisfied, err)
	}
	return nil
}
