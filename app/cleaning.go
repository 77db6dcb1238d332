package app

import (
	"context"
	"fmt"

	"mlpipe/adapters/tabular"
	"mlpipe/domain/artifact"
	"mlpipe/domain/core"
	"mlpipe/domain/dataset"
	"mlpipe/domain/schema"
	"mlpipe/domain/stage"
	"mlpipe/internal"
	"mlpipe/internal/config"
	"mlpipe/internal/errors"
	"mlpipe/internal/ml"
	"mlpipe/ports"
)

// Cleaning turns the validated raw table into a fully numeric, imputed table
type Cleaning struct {
	cfg    *config.Config
	schema *schema.Schema
	store  ports.ObjectStore
	logger *internal.Logger
}

// NewCleaning creates the cleaning stage
func NewCleaning(cfg *config.Config, sch *schema.Schema, store ports.ObjectStore, logger *internal.Logger) *Cleaning {
	return &Cleaning{
		cfg:    cfg,
		schema: sch,
		store:  store,
		logger: logger.With("cleaning"),
	}
}

// Run refuses to clean a table that failed validation
func (s *Cleaning) Run(ctx context.Context, ingested artifact.IngestionArtifact, validation artifact.ValidationArtifact) (artifact.CleaningArtifact, error) {
	name := string(stage.StageCleaning)
	if !validation.Status {
		return artifact.CleaningArtifact{}, errors.Validation(name, validation.Message, core.ErrValidationNotSatisfied)
	}

	table, err := tabular.ReadCSV(ingested.IngestedDataPath)
	if err != nil {
		return artifact.CleaningArtifact{}, errors.Transform(name, "failed to read ingested data", err)
	}

	cleaned, classes, err := CleanTable(table, s.schema)
	if err != nil {
		return artifact.CleaningArtifact{}, errors.Transform(name, "failed to clean table", err)
	}
	s.logger.Info("Cleaned table has %d rows and %d columns, target classes %v", cleaned.Len(), cleaned.Width(), classes)

	cleanedPath := s.cfg.Paths.CleanedData()
	if err := writeBoth(cleanedPath, func(p string) error { return tabular.WriteCSV(p, cleaned) }); err != nil {
		return artifact.CleaningArtifact{}, errors.Transform(name, "failed to write cleaned data", err)
	}
	if _, err := upload(ctx, s.store, s.cfg.Paths, cleanedPath); err != nil {
		return artifact.CleaningArtifact{}, errors.Transform(name, "failed to upload cleaned data", err)
	}

	return artifact.CleaningArtifact{
		CleanedDataPath: cleanedPath.Path,
		TargetClasses:   classes,
	}, nil
}

// CleanTable encodes the target, caps numeric outliers, imputes missing cells and
// one-hot encodes the categorical columns. The target comes back as the last
// column, encoded as 0..k-1 over the returned sorted classes.
func CleanTable(table *dataset.Table, sch *schema.Schema) (*dataset.Table, []string, error) {
	out := table.Clone()

	targetCol, err := out.Column(sch.TargetColumn)
	if err != nil {
		return nil, nil, err
	}
	var enc ml.LabelEncoder
	codes, err := enc.FitTransform(categoricalValues(targetCol))
	if err != nil {
		return nil, nil, fmt.Errorf("target %s: %w", sch.TargetColumn, err)
	}
	target := dataset.NewNumericColumn(sch.TargetColumn, codes)

	for _, name := range sch.NumericalColumns {
		values, err := out.Numeric(name)
		if err != nil {
			return nil, nil, err
		}
		factor, ok := sch.Features.OutlierUpperFactors[name]
		if !ok {
			factor = ml.DefaultIQRFactor
		}
		capped, _, err := ml.CapOutliers(values, factor)
		if err != nil {
			return nil, nil, fmt.Errorf("capping %s: %w", name, err)
		}
		if err := out.Add(dataset.NewNumericColumn(name, capped)); err != nil {
			return nil, nil, err
		}
	}

	features := out.Drop(sch.TargetColumn)
	categorical := make(map[string]bool, len(sch.CategoricalColumns))
	for _, name := range sch.CategoricalColumns {
		categorical[name] = true
	}
	numerical := make(map[string]bool, len(sch.NumericalColumns))
	for _, name := range sch.NumericalColumns {
		numerical[name] = true
	}

	// Columns outside both schema lists pass through untouched
	result := dataset.NewTable()
	for _, col := range features.Columns() {
		if categorical[col.Name] {
			continue
		}
		if numerical[col.Name] {
			filled, _, err := ml.MedianImpute(col.Num)
			if err != nil {
				return nil, nil, fmt.Errorf("imputing %s: %w", col.Name, err)
			}
			col = &dataset.Column{Name: col.Name, Kind: col.Kind, Num: filled}
		}
		if err := result.Add(col); err != nil {
			return nil, nil, err
		}
	}

	for _, name := range sch.CategoricalColumns {
		col, err := features.Column(name)
		if err != nil {
			return nil, nil, err
		}
		filled, _, err := ml.ModeImpute(categoricalValues(col))
		if err != nil {
			return nil, nil, fmt.Errorf("imputing %s: %w", name, err)
		}
		for _, dummy := range ml.OneHot(dataset.NewCategoricalColumn(name, filled), true) {
			if err := result.Add(dummy); err != nil {
				return nil, nil, err
			}
		}
	}

	if err := result.Add(target); err != nil {
		return nil, nil, err
	}
	return result, enc.Classes, nil
}

// categoricalValues reads any column as strings; a column the reader inferred
// as boolean or numeric encodes by its rendered values
func categoricalValues(col *dataset.Column) []string {
	if col.Kind == dataset.KindCategorical {
		return col.Str
	}
	out := make([]string, col.Len())
	for i := range out {
		out[i] = col.Format(i)
	}
	return out
}
