package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/models"
	"github.com/kotoba-dev/kotoba/pkg/otelhelper"
	"github.com/kotoba-dev/kotoba/pkg/protocol"
)

const tracerName = "kotoba/pipeline"

// ExecuteStage resolves and runs a single stage against the context.
// Stage-not-found surfaces as an error; every other outcome, including
// runtime faults inside the stage, comes back as a structured result.
func (b *Base) ExecuteStage(ctx context.Context, stageName string, ec *execution.Context) (*models.StageResult, error) {
	stage, err := b.GetStage(stageName)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.execute_stage")
	span.SetAttributes(
		attribute.String(otelhelper.PipelineNameKey, b.name),
		attribute.String(otelhelper.StageNameKey, stageName),
		attribute.String(otelhelper.RunIDKey, ec.RunID),
	)

	defer span.End()

	result := b.runStage(ctx, stage, ec)

	switch result.Status {
	case models.StageStatusSuccess:
		ec.MarkStageComplete(stageName)
	case models.StageStatusFailure:
		if len(result.Errors) == 0 {
			ec.AddError(result.Message)
		}

		for _, message := range result.Errors {
			ec.AddError(message)
		}

		otelhelper.SetError(span, fmt.Errorf("stage %s failed: %s", stageName, result.Message))
	case models.StageStatusPartial, models.StageStatusSkipped:
	}

	return result, nil
}

// ExecutePhase runs the named phase's stages in declared order against one
// shared context. A failure result stops the phase (fail-fast); partial
// and skipped results do not. The ordered results gathered so far are
// always returned.
func (b *Base) ExecutePhase(ctx context.Context, phaseName string, ec *execution.Context) ([]*models.StageResult, error) {
	stageNames, ok := b.phases[phaseName]
	if !ok {
		return nil, fmt.Errorf("%w: %q in pipeline %q", ErrPhaseNotFound, phaseName, b.name)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.execute_phase")
	span.SetAttributes(
		attribute.String(otelhelper.PipelineNameKey, b.name),
		attribute.String(otelhelper.PhaseNameKey, phaseName),
		attribute.String(otelhelper.RunIDKey, ec.RunID),
	)

	defer span.End()

	ec.Logger.Info("Starting phase", "phase", phaseName, "stages", len(stageNames))

	results := make([]*models.StageResult, 0, len(stageNames))

	for _, stageName := range stageNames {
		result, err := b.ExecuteStage(ctx, stageName, ec)
		if err != nil {
			return results, err
		}

		results = append(results, result)

		if result.Failed() {
			ec.Logger.Warn("Phase halted by failed stage",
				"phase", phaseName, "stage", stageName, "message", result.Message)

			return results, nil
		}
	}

	ec.Logger.Info("Phase completed", "phase", phaseName, "results", len(results))

	return results, nil
}

// runStage is the guarded invocation path: dependency precondition,
// run-condition, context validation, then the stage's core logic with
// fault recovery. Duration is logged whatever the outcome.
func (b *Base) runStage(ctx context.Context, stage protocol.Stage, ec *execution.Context) (result *models.StageResult) {
	logger := ec.Logger.With("stage", stage.Name())
	started := time.Now()

	defer func() {
		if fault := recover(); fault != nil {
			result = models.NewFailureResult(
				fmt.Sprintf("stage %s faulted: %v", stage.Name(), fault))
		}

		status := "unknown"
		if result != nil {
			status = string(result.Status)
		}

		logger.Info("Stage finished",
			"status", status, "duration", time.Since(started).String())
	}()

	if missing := unmetDependencies(stage, ec); len(missing) > 0 {
		return models.NewFailureResult(
			fmt.Sprintf("stage %s has unmet dependencies: %s",
				stage.Name(), strings.Join(missing, ", ")))
	}

	if conditional, ok := stage.(protocol.ConditionalStage); ok {
		shouldRun, err := evaluateCondition(conditional.Condition(), ec)
		if err != nil {
			return models.NewFailureResult(
				fmt.Sprintf("stage %s condition failed to evaluate: %v", stage.Name(), err))
		}

		if !shouldRun {
			return models.NewSkippedResult(
				fmt.Sprintf("stage %s skipped: condition not met", stage.Name()))
		}
	}

	if problems := stage.ValidateContext(ec); len(problems) > 0 {
		return models.NewFailureResult(
			fmt.Sprintf("stage %s context validation failed", stage.Name()),
			problems...)
	}

	logger.Debug("Executing stage")

	result, err := stage.Run(ctx, ec)
	if err != nil {
		return models.NewFailureResult(
			fmt.Sprintf("stage %s failed: %v", stage.Name(), err))
	}

	if result == nil {
		return models.NewFailureResult(
			fmt.Sprintf("stage %s returned no result", stage.Name()))
	}

	return result
}

// unmetDependencies lists declared dependencies absent from the context's
// completed-stage log. Dependencies are enforced, not advisory: running a
// stage standalone still requires its prerequisites to have completed.
func unmetDependencies(stage protocol.Stage, ec *execution.Context) []string {
	var missing []string

	for _, dependency := range stage.Dependencies() {
		if !ec.IsStageComplete(dependency) {
			missing = append(missing, dependency)
		}
	}

	return missing
}

// evaluateCondition runs an expr expression against the context data. An
// empty condition always passes.
func evaluateCondition(condition string, ec *execution.Context) (bool, error) {
	if condition == "" {
		return true, nil
	}

	env := map[string]any{
		"data":      ec.Data(),
		"completed": ec.CompletedStages(),
		"pipeline":  ec.PipelineName,
	}

	program, err := expr.Compile(condition, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("invalid condition %q: %w", condition, err)
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", condition, err)
	}

	verdict, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not produce a boolean", condition)
	}

	return verdict, nil
}
