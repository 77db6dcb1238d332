package app

import (
	"context"
	"fmt"
	"math"

	"mlpipe/domain/artifact"
	"mlpipe/domain/core"
	"mlpipe/domain/stage"
	"mlpipe/internal"
	"mlpipe/internal/config"
	"mlpipe/internal/errors"
	"mlpipe/internal/ml"
	"mlpipe/ports"
)

// Evaluation compares the candidate against the production model in the bucket
type Evaluation struct {
	cfg    *config.Config
	store  ports.ObjectStore
	logger *internal.Logger
}

// NewEvaluation creates the model evaluation stage
func NewEvaluation(cfg *config.Config, store ports.ObjectStore, logger *internal.Logger) *Evaluation {
	return &Evaluation{
		cfg:    cfg,
		store:  store,
		logger: logger.With("evaluation"),
	}
}

// Run scores the production model, if any, on this run's test array and applies the gate
func (s *Evaluation) Run(ctx context.Context, features artifact.FeatureEngineeringArtifact, trained artifact.TrainerArtifact) (artifact.EvaluationArtifact, error) {
	name := string(stage.StageModelEvaluation)
	key := s.cfg.Registry.ProductionModelKey

	present, err := s.store.Exists(ctx, key)
	if err != nil {
		return artifact.EvaluationArtifact{}, errors.Promotion(name, "failed to look up production model", err)
	}

	var prodF1 float64
	if present {
		prodF1, err = s.scoreProduction(ctx, key, features.TestPath)
		if err != nil {
			return artifact.EvaluationArtifact{}, errors.Promotion(name, "failed to score production model", err)
		}
		s.logger.Info("Production model %s scores F1 %.4f", key, prodF1)
	} else {
		s.logger.Info("No production model at %s", key)
	}

	accepted, delta := PromotionGate(trained.Metrics.F1, prodF1)
	s.logger.Info("Candidate F1 %.4f, delta %.4f, accepted=%t", trained.Metrics.F1, delta, accepted)

	return artifact.EvaluationArtifact{
		Accepted:           accepted,
		Delta:              delta,
		TrainedModelF1:     trained.Metrics.F1,
		ProductionModelF1:  prodF1,
		ProductionPresent:  present,
		CandidateModelPath: trained.TrainedModelPath,
		ProductionModelKey: key,
	}, nil
}

func (s *Evaluation) scoreProduction(ctx context.Context, key, testPath string) (float64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	model, err := ml.UnmarshalModel(data)
	if err != nil {
		return 0, err
	}

	x, y, err := loadArray(testPath)
	if err != nil {
		return 0, err
	}
	if _, cols := x.Dims(); cols != model.NFeatures() {
		return 0, fmt.Errorf("%w: production model takes %d features, test array has %d",
			core.ErrFeatureMismatch, model.NFeatures(), cols)
	}

	pred, err := model.PredictMatrix(x)
	if err != nil {
		return 0, err
	}
	m, err := ml.Score(y, pred)
	if err != nil {
		return 0, err
	}
	return m.F1, nil
}

// PromotionGate accepts a candidate only when it strictly beats production.
// An absent production model scores 0, and NaN scores count as 0.
func PromotionGate(candidateF1, productionF1 float64) (accepted bool, delta float64) {
	if math.IsNaN(candidateF1) {
		candidateF1 = 0
	}
	if math.IsNaN(productionF1) {
		productionF1 = 0
	}
	delta = candidateF1 - productionF1
	return candidateF1 > productionF1, delta
}
