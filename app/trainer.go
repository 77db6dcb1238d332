package app

import (
	"context"
	"fmt"

	"mlpipe/adapters/tabular"
	"mlpipe/domain/artifact"
	"mlpipe/domain/core"
	"mlpipe/domain/stage"
	"mlpipe/internal"
	"mlpipe/internal/config"
	"mlpipe/internal/errors"
	"mlpipe/internal/ml"

	"gonum.org/v1/gonum/mat"
)

// Trainer fits the candidate classifier and bundles it with the preprocessor
type Trainer struct {
	cfg    *config.Config
	logger *internal.Logger
}

// NewTrainer creates the model trainer stage
func NewTrainer(cfg *config.Config, logger *internal.Logger) *Trainer {
	return &Trainer{
		cfg:    cfg,
		logger: logger.With("trainer"),
	}
}

// Run fits on the train array and scores the test array. A model whose training
// accuracy is below the expected score is rejected here.
func (s *Trainer) Run(ctx context.Context, features artifact.FeatureEngineeringArtifact) (artifact.TrainerArtifact, error) {
	name := string(stage.StageModelTrainer)
	if err := ctx.Err(); err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "training cancelled", err)
	}

	xTrain, yTrain, err := loadArray(features.TrainPath)
	if err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "failed to load train array", err)
	}
	xTest, yTest, err := loadArray(features.TestPath)
	if err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "failed to load test array", err)
	}

	tc := s.cfg.Trainer
	clf := ml.NewLogisticRegression(tc.C, tc.MaxIter, tc.Solver)
	if err := clf.Fit(xTrain, yTrain); err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "failed to fit classifier", err)
	}
	s.logger.Info("Fitted %s logistic regression in %d iterations (%s)", tc.Solver, clf.NIter, clf.Status)

	trainPred, err := clf.Predict(xTrain)
	if err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "failed to predict train rows", err)
	}
	trainAcc, err := ml.Accuracy(yTrain, trainPred)
	if err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "failed to score train rows", err)
	}
	if trainAcc < tc.ExpectedScore {
		return artifact.TrainerArtifact{}, errors.Training(name,
			fmt.Sprintf("training accuracy %.4f is below expected %.4f", trainAcc, tc.ExpectedScore),
			core.ErrBelowExpectedAccuracy)
	}

	testPred, err := clf.Predict(xTest)
	if err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "failed to predict test rows", err)
	}
	metrics, err := ml.Score(yTest, testPred)
	if err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "failed to score test rows", err)
	}
	s.logger.Info("Train accuracy %.4f, test accuracy %.4f, test F1 %.4f", trainAcc, metrics.Accuracy, metrics.F1)

	pre, err := ml.LoadPreprocessor(features.PreprocessorPath)
	if err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "failed to load preprocessor", err)
	}
	model := &ml.Model{Preprocessor: pre, Classifier: *clf}

	modelPath := s.cfg.Paths.TrainedModel()
	if err := writeBoth(modelPath, model.Save); err != nil {
		return artifact.TrainerArtifact{}, errors.Training(name, "failed to save model", err)
	}

	return artifact.TrainerArtifact{
		TrainedModelPath: modelPath.Latest,
		TrainAccuracy:    trainAcc,
		Metrics:          artifact.FromMetrics(metrics),
	}, nil
}

// loadArray reads a persisted array and splits off the target column
func loadArray(path string) (*mat.Dense, []float64, error) {
	m, err := tabular.LoadMatrix(path)
	if err != nil {
		return nil, nil, err
	}
	return ml.SplitTarget(m)
}
