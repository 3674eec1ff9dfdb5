// Package pipeline implements the execution engine driving stages and
// phases against one shared execution context.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/protocol"
)

var (
	ErrStageNotFound     = errors.New("stage not found")
	ErrPhaseNotFound     = errors.New("phase not found")
	ErrUnknownPhaseStage = errors.New("phase references a stage outside the pipeline's stage set")
)

// Base is the canonical pipeline implementation. Concrete pipelines embed
// it, register their stage factories and phases, and override the CLI
// hooks when they accept arguments.
type Base struct {
	name        string
	displayName string

	stageOrder []string
	factories  map[string]protocol.StageFactory
	phases     map[string][]string
	phaseOrder []string
}

// NewBase creates an empty pipeline with the given identity.
func NewBase(name, displayName string) *Base {
	return &Base{
		name:        name,
		displayName: displayName,
		factories:   make(map[string]protocol.StageFactory),
		phases:      make(map[string][]string),
	}
}

func (b *Base) Name() string        { return b.name }
func (b *Base) DisplayName() string { return b.displayName }

// RegisterStage adds a stage factory under the stage's name. The factory
// is invoked once to capture the name; instances for execution are built
// lazily per run.
func (b *Base) RegisterStage(factory protocol.StageFactory) {
	name := factory().Name()
	if _, exists := b.factories[name]; !exists {
		b.stageOrder = append(b.stageOrder, name)
	}

	b.factories[name] = factory
}

// DefinePhase names an ordered subset of stages meant to run together.
// Every referenced stage must already be registered.
func (b *Base) DefinePhase(name string, stageNames ...string) error {
	for _, stageName := range stageNames {
		if _, ok := b.factories[stageName]; !ok {
			return fmt.Errorf("%w: phase %q references %q", ErrUnknownPhaseStage, name, stageName)
		}
	}

	if _, exists := b.phases[name]; !exists {
		b.phaseOrder = append(b.phaseOrder, name)
	}

	b.phases[name] = append([]string(nil), stageNames...)

	return nil
}

// Stages lists the registered stage names in registration order.
func (b *Base) Stages() []string {
	return append([]string(nil), b.stageOrder...)
}

// Phases maps phase name to its ordered stage list.
func (b *Base) Phases() map[string][]string {
	out := make(map[string][]string, len(b.phases))
	for name, stages := range b.phases {
		out[name] = append([]string(nil), stages...)
	}

	return out
}

// PhaseNames lists phases in definition order.
func (b *Base) PhaseNames() []string {
	return append([]string(nil), b.phaseOrder...)
}

// GetStage constructs a fresh instance of the named stage.
func (b *Base) GetStage(name string) (protocol.Stage, error) {
	factory, ok := b.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in pipeline %q", ErrStageNotFound, name, b.name)
	}

	return factory(), nil
}

// ValidateCLIArgs accepts everything by default; pipelines that take
// arguments override this.
func (b *Base) ValidateCLIArgs(_ map[string]string) []string {
	return nil
}

// PopulateContextFromCLI is a no-op by default; pipelines that take
// arguments override this to translate them into context writes.
func (b *Base) PopulateContextFromCLI(_ *execution.Context, _ map[string]string) {
}
