package protocol

import (
	"context"

	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/models"
)

// Pipeline is a named collection of stages plus named phases that run
// together against one shared execution context.
type Pipeline interface {
	// Name is the pipeline's globally unique identifier.
	Name() string

	// DisplayName is the human-readable pipeline name.
	DisplayName() string

	// Stages lists the available stage names in declaration order.
	Stages() []string

	// Phases maps phase name to the ordered stage names it runs.
	Phases() map[string][]string

	// GetStage resolves a stage by name, constructing the instance.
	GetStage(name string) (Stage, error)

	// ExecuteStage runs one stage against the context. Stage-not-found
	// surfaces as an error; every other outcome is a structured result.
	ExecuteStage(ctx context.Context, stageName string, ec *execution.Context) (*models.StageResult, error)

	// ExecutePhase runs the named phase's stages in declared order
	// against the same context, stopping at the first failure result.
	ExecutePhase(ctx context.Context, phaseName string, ec *execution.Context) ([]*models.StageResult, error)

	// ValidateCLIArgs checks external invocation arguments before a run
	// is constructed. Empty slice means the arguments are acceptable.
	ValidateCLIArgs(args map[string]string) []string

	// PopulateContextFromCLI translates external invocation arguments
	// into context writes ahead of the first stage.
	PopulateContextFromCLI(ec *execution.Context, args map[string]string)
}
