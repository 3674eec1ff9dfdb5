// Package protocol defines the authoring contracts between the
// orchestration core, concrete stages, and concrete pipelines.
package protocol

import (
	"context"

	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/models"
)

// Stage is the atomic unit of work inside a pipeline.
type Stage interface {
	// Name is the stage's identifier, unique within its pipeline.
	Name() string

	// DisplayName is the human-readable stage name.
	DisplayName() string

	// Dependencies lists stage names that must be in the context's
	// completed-stage log before this stage may run.
	Dependencies() []string

	// ValidateContext checks the context before the stage runs and
	// returns human-readable problems. It must be side-effect-free; an
	// empty slice means the context is valid.
	ValidateContext(ec *execution.Context) []string

	// Run performs the stage's work, reading and writing the execution
	// context. It is only called after ValidateContext passed.
	Run(ctx context.Context, ec *execution.Context) (*models.StageResult, error)
}

// ConditionalStage is an optional extension: a stage whose Condition
// expression (evaluated against the context data) gates whether it runs.
// A false condition yields a skipped result instead of an invocation.
type ConditionalStage interface {
	Stage

	Condition() string
}

// StageFactory constructs a fresh stage instance.
type StageFactory func() Stage
