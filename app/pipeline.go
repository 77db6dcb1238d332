package app

import (
	"context"
	"fmt"
	"time"

	"mlpipe/adapters/report"
	"mlpipe/domain/artifact"
	"mlpipe/domain/core"
	"mlpipe/domain/run"
	"mlpipe/domain/schema"
	"mlpipe/domain/stage"
	"mlpipe/internal"
	"mlpipe/internal/config"
	"mlpipe/internal/errors"
	"mlpipe/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies the pipeline's spans
const TracerName = "mlpipe/app"

// PipelineDeps are the collaborators a pipeline run needs. Ledger may be nil.
type PipelineDeps struct {
	Config      *config.Config
	Schema      *schema.Schema
	Source      ports.DocumentSource
	Store       ports.ObjectStore
	Ledger      ports.RunLedger
	Logger      *internal.Logger
	CodeVersion string
}

// RunOutcome is everything a run produced, up to the stage that failed
type RunOutcome struct {
	Manifest   *run.RunManifest
	Result     *stage.PipelineResult
	Ingestion  *artifact.IngestionArtifact
	Validation *artifact.ValidationArtifact
	Cleaning   *artifact.CleaningArtifact
	Features   *artifact.FeatureEngineeringArtifact
	Trainer    *artifact.TrainerArtifact
	Evaluation *artifact.EvaluationArtifact
	Pusher     *artifact.PusherArtifact
}

// Pipeline runs the seven training stages in order; the first failure aborts the run
type Pipeline struct {
	deps   PipelineDeps
	plan   *stage.StagePlan
	tracer trace.Tracer
	logger *internal.Logger

	ingestion  *Ingestion
	validation *Validation
	cleaning   *Cleaning
	features   *FeatureEngineering
	trainer    *Trainer
	evaluation *Evaluation
	pusher     *Pusher
}

// NewPipeline wires the stages
func NewPipeline(deps PipelineDeps) (*Pipeline, error) {
	if deps.Config == nil || deps.Schema == nil || deps.Source == nil || deps.Store == nil {
		return nil, errors.InternalError("pipeline requires config, schema, source and store")
	}
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}
	if deps.CodeVersion == "" {
		deps.CodeVersion = "dev"
	}

	cfg, logger := deps.Config, deps.Logger
	return &Pipeline{
		deps:       deps,
		plan:       stage.DefaultPlan(),
		tracer:     otel.Tracer(TracerName),
		logger:     logger.With("pipeline"),
		ingestion:  NewIngestion(cfg, deps.Source, deps.Store, logger),
		validation: NewValidation(cfg, deps.Schema, logger),
		cleaning:   NewCleaning(cfg, deps.Schema, deps.Store, logger),
		features:   NewFeatureEngineering(cfg, deps.Schema, deps.Store, logger),
		trainer:    NewTrainer(cfg, logger),
		evaluation: NewEvaluation(cfg, deps.Store, logger),
		pusher:     NewPusher(cfg, deps.Store, logger),
	}, nil
}

// Manifest builds the manifest of the next run
func (p *Pipeline) Manifest() *run.RunManifest {
	cfg := p.deps.Config
	return run.NewRunManifest(
		core.NewRunID(),
		cfg.Pipeline.Name,
		cfg.Pipeline.CreatedAt,
		p.deps.Schema.Hash(),
		core.ComputeConfigHash(cfg.Settings()),
		p.plan,
		cfg.Split.Seed,
		p.deps.CodeVersion,
	)
}

// Run executes one pipeline run. The outcome is returned even when a stage fails.
func (p *Pipeline) Run(ctx context.Context) (*RunOutcome, error) {
	manifest := p.Manifest()
	if err := manifest.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid run manifest")
	}

	ctx, span := p.tracer.Start(ctx, "pipeline_run", trace.WithAttributes(
		attribute.String("run_id", manifest.RunID.String()),
		attribute.String("fingerprint", manifest.Fingerprint.Fingerprint.Short()),
	))
	defer span.End()

	if ledger := p.deps.Ledger; ledger != nil {
		if err := ledger.RecordRun(ctx, manifest); err != nil {
			return nil, errors.DatabaseError("failed to record run", err)
		}
	}
	p.logger.Info("Starting run %s (stamp %s, fingerprint %s)", manifest.RunID, manifest.Stamp, manifest.Fingerprint.Fingerprint.Short())

	outcome := &RunOutcome{Manifest: manifest, Result: stage.NewPipelineResult(p.plan)}
	runErr := p.execute(ctx, outcome)

	status, code := ports.RunStatusSucceeded, ""
	if runErr != nil {
		status, code = ports.RunStatusFailed, errors.GetCode(runErr)
		span.RecordError(runErr)
		span.SetStatus(codes.Error, code)
		p.logger.Error("Run %s failed: %v", manifest.RunID, runErr)
	} else {
		p.logger.Info("Run %s finished in %dms", manifest.RunID, outcome.Result.Overall.TotalDuration)
	}

	if ledger := p.deps.Ledger; ledger != nil {
		if err := ledger.FinishRun(ctx, manifest.RunID, status, code); err != nil {
			p.logger.Warn("Failed to record run status: %v", err)
			if runErr == nil {
				runErr = errors.DatabaseError("failed to finish run", err)
			}
		}
	}

	if p.deps.Config.Report.Enabled {
		if err := report.Write(p.deps.Config.Paths.RunReport(), outcome.report()); err != nil {
			p.logger.Warn("Failed to write run report: %v", err)
		}
	}

	return outcome, runErr
}

func (p *Pipeline) execute(ctx context.Context, out *RunOutcome) error {
	runID := out.Manifest.RunID

	err := p.step(ctx, runID, stage.StageIngestion, out, func(ctx context.Context) error {
		a, err := p.ingestion.Run(ctx)
		if err != nil {
			return err
		}
		out.Ingestion = &a
		return nil
	})
	if err != nil {
		return err
	}

	err = p.step(ctx, runID, stage.StageValidation, out, func(ctx context.Context) error {
		a, err := p.validation.Run(ctx, *out.Ingestion)
		if err != nil {
			return err
		}
		out.Validation = &a
		return nil
	})
	if err != nil {
		return err
	}

	err = p.step(ctx, runID, stage.StageCleaning, out, func(ctx context.Context) error {
		a, err := p.cleaning.Run(ctx, *out.Ingestion, *out.Validation)
		if err != nil {
			return err
		}
		out.Cleaning = &a
		return nil
	})
	if err != nil {
		return err
	}

	err = p.step(ctx, runID, stage.StageFeatureEngineering, out, func(ctx context.Context) error {
		a, err := p.features.Run(ctx, *out.Cleaning)
		if err != nil {
			return err
		}
		out.Features = &a
		return nil
	})
	if err != nil {
		return err
	}

	err = p.step(ctx, runID, stage.StageModelTrainer, out, func(ctx context.Context) error {
		a, err := p.trainer.Run(ctx, *out.Features)
		if err != nil {
			return err
		}
		out.Trainer = &a
		return nil
	})
	if err != nil {
		return err
	}

	err = p.step(ctx, runID, stage.StageModelEvaluation, out, func(ctx context.Context) error {
		a, err := p.evaluation.Run(ctx, *out.Features, *out.Trainer)
		if err != nil {
			return err
		}
		out.Evaluation = &a
		return nil
	})
	if err != nil {
		return err
	}
	if ledger := p.deps.Ledger; ledger != nil {
		if err := ledger.RecordEvaluation(ctx, runID, out.Trainer.Metrics, *out.Evaluation); err != nil {
			return errors.DatabaseError("failed to record evaluation", err)
		}
	}

	return p.step(ctx, runID, stage.StageModelPusher, out, func(ctx context.Context) error {
		a, err := p.pusher.Run(ctx, *out.Evaluation, *out.Features)
		if err != nil {
			return err
		}
		out.Pusher = &a
		return nil
	})
}

// step runs one stage inside a span and records its result
func (p *Pipeline) step(ctx context.Context, runID core.RunID, name stage.StageName, out *RunOutcome, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, string(name), trace.WithAttributes(
		attribute.String("stage", string(name)),
		attribute.String("run_id", runID.String()),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "run cancelled before %s", name)
	}

	started := time.Now()
	err := fn(ctx)
	code := ""
	if err != nil {
		if !errors.IsAppError(err) {
			err = errors.Wrapf(err, "stage %s failed", name)
		}
		code = errors.GetCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
	}

	result := stage.NewStageResult(name, started, code, err)
	out.Result.AddResult(result)
	p.logger.Debug("Stage %s finished in %dms (success=%t)", name, result.Duration, result.Success)

	if ledger := p.deps.Ledger; ledger != nil {
		if lerr := ledger.RecordStage(ctx, runID, result); lerr != nil && err == nil {
			return errors.DatabaseError(fmt.Sprintf("failed to record stage %s", name), lerr)
		}
	}
	return err
}

func (o *RunOutcome) report() report.RunReport {
	return report.RunReport{
		Manifest:   o.Manifest,
		Stages:     o.Result.Results,
		Validation: o.Validation,
		Trainer:    o.Trainer,
		Evaluation: o.Evaluation,
		Pusher:     o.Pusher,
	}
}
