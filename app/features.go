package app

import (
	"context"

	"mlpipe/adapters/tabular"
	"mlpipe/domain/artifact"
	"mlpipe/domain/schema"
	"mlpipe/domain/stage"
	"mlpipe/internal"
	"mlpipe/internal/config"
	"mlpipe/internal/errors"
	"mlpipe/internal/ml"
	"mlpipe/ports"
)

// FeatureEngineering splits the cleaned table and builds the scaled train/test arrays
type FeatureEngineering struct {
	cfg    *config.Config
	schema *schema.Schema
	store  ports.ObjectStore
	logger *internal.Logger
}

// NewFeatureEngineering creates the feature engineering stage
func NewFeatureEngineering(cfg *config.Config, sch *schema.Schema, store ports.ObjectStore, logger *internal.Logger) *FeatureEngineering {
	return &FeatureEngineering{
		cfg:    cfg,
		schema: sch,
		store:  store,
		logger: logger.With("features"),
	}
}

// Run persists train/test arrays with the target as the last column and the fitted preprocessor
func (s *FeatureEngineering) Run(ctx context.Context, cleaned artifact.CleaningArtifact) (artifact.FeatureEngineeringArtifact, error) {
	name := string(stage.StageFeatureEngineering)
	fail := func(msg string, err error) (artifact.FeatureEngineeringArtifact, error) {
		return artifact.FeatureEngineeringArtifact{}, errors.Transform(name, msg, err)
	}

	table, err := tabular.ReadCSV(cleaned.CleanedDataPath)
	if err != nil {
		return fail("failed to read cleaned data", err)
	}
	y, err := table.Numeric(s.schema.TargetColumn)
	if err != nil {
		return fail("cleaned data has no encoded target", err)
	}
	features := table.Drop(s.schema.TargetColumn)

	// Edges come from the whole table, before the split.
	var edges []float64
	if bin := s.schema.Features.BinColumn; bin != "" {
		values, err := features.Numeric(bin)
		if err != nil {
			return fail("bin column unavailable", err)
		}
		if edges, err = ml.TertileEdges(values); err != nil {
			return fail("failed to compute bin edges for "+bin, err)
		}
	}

	trainIdx, testIdx, err := ml.StratifiedSplit(y, s.cfg.Split.TestSize, s.cfg.Split.Seed)
	if err != nil {
		return fail("failed to split data", err)
	}
	s.logger.Info("Split %d rows into %d train and %d test", len(y), len(trainIdx), len(testIdx))

	pre := ml.NewPreprocessor(s.schema.Features, edges)
	pre.TargetClasses = cleaned.TargetClasses

	xTrain, err := pre.FitTransform(features.Rows(trainIdx))
	if err != nil {
		return fail("failed to fit preprocessor", err)
	}
	xTest, err := pre.Transform(features.Rows(testIdx))
	if err != nil {
		return fail("failed to transform test rows", err)
	}
	s.logger.Debug("Engineered features: %v", pre.FeatureNames)

	trainArr, err := ml.WithTarget(xTrain, pick(y, trainIdx))
	if err != nil {
		return fail("failed to assemble train array", err)
	}
	testArr, err := ml.WithTarget(xTest, pick(y, testIdx))
	if err != nil {
		return fail("failed to assemble test array", err)
	}

	trainPath, testPath, prePath := s.cfg.Paths.TrainArray(), s.cfg.Paths.TestArray(), s.cfg.Paths.Preprocessor()
	if err := writeBoth(trainPath, func(p string) error { return tabular.SaveMatrix(p, trainArr) }); err != nil {
		return fail("failed to save train array", err)
	}
	if err := writeBoth(testPath, func(p string) error { return tabular.SaveMatrix(p, testArr) }); err != nil {
		return fail("failed to save test array", err)
	}
	if err := writeBoth(prePath, pre.Save); err != nil {
		return fail("failed to save preprocessor", err)
	}
	for _, sp := range []config.StagePath{trainPath, testPath, prePath} {
		if _, err := upload(ctx, s.store, s.cfg.Paths, sp); err != nil {
			return fail("failed to upload feature artifacts", err)
		}
	}

	return artifact.FeatureEngineeringArtifact{
		TrainPath:        trainPath.Path,
		TestPath:         testPath.Path,
		PreprocessorPath: prePath.Path,
		BinEdges:         pre.BinEdges,
		Scaler:           pre.Scaler,
		Poly:             pre.Poly,
		FeatureNames:     pre.FeatureNames,
	}, nil
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
