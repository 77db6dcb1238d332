package app

import (
	"context"
	"path"

	"mlpipe/domain/artifact"
	"mlpipe/domain/stage"
	"mlpipe/internal"
	"mlpipe/internal/config"
	"mlpipe/internal/errors"
	"mlpipe/ports"
)

// Pusher overwrites the production model with an accepted candidate
type Pusher struct {
	cfg    *config.Config
	store  ports.ObjectStore
	logger *internal.Logger
}

// NewPusher creates the model pusher stage
func NewPusher(cfg *config.Config, store ports.ObjectStore, logger *internal.Logger) *Pusher {
	return &Pusher{
		cfg:    cfg,
		store:  store,
		logger: logger.With("pusher"),
	}
}

// Run uploads the candidate model and its preprocessor next to the production key
func (s *Pusher) Run(ctx context.Context, eval artifact.EvaluationArtifact, features artifact.FeatureEngineeringArtifact) (artifact.PusherArtifact, error) {
	if !eval.Accepted {
		s.logger.Info("Candidate not accepted, production model unchanged")
		return artifact.PusherArtifact{Pushed: false}, nil
	}

	name := string(stage.StageModelPusher)
	modelKey := eval.ProductionModelKey
	preKey := path.Join(path.Dir(modelKey), config.PreprocessorFileName)

	if err := s.store.PutFile(ctx, modelKey, eval.CandidateModelPath); err != nil {
		return artifact.PusherArtifact{}, errors.Promotion(name, "failed to upload model", err)
	}
	if err := s.store.PutFile(ctx, preKey, features.PreprocessorPath); err != nil {
		return artifact.PusherArtifact{}, errors.Promotion(name, "failed to upload preprocessor", err)
	}
	s.logger.Info("Pushed model to %s/%s", s.store.Bucket(), modelKey)

	return artifact.PusherArtifact{
		Pushed:          true,
		Bucket:          s.store.Bucket(),
		ModelKey:        modelKey,
		PreprocessorKey: preKey,
	}, nil
}
