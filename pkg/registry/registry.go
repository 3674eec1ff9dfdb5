// Package registry is the central directory of pipeline instances.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kotoba-dev/kotoba/pkg/models"
	"github.com/kotoba-dev/kotoba/pkg/protocol"
)

var ErrPipelineNotFound = errors.New("pipeline not found")

// PipelineRegistry stores pipelines by name. It is populated once at
// startup and treated as read-only afterwards; registering concurrently
// with lookups is unsupported.
type PipelineRegistry struct {
	logger    *slog.Logger
	pipelines map[string]protocol.Pipeline
}

// NewPipelineRegistry creates an empty registry. Callers own the instance
// and pass it by reference wherever it is needed; there is no process-wide
// singleton.
func NewPipelineRegistry(logger *slog.Logger) *PipelineRegistry {
	return &PipelineRegistry{
		logger:    logger,
		pipelines: make(map[string]protocol.Pipeline),
	}
}

// Register stores the pipeline under its name. Re-registering a name
// overwrites the previous instance; production setups should register each
// pipeline exactly once.
func (r *PipelineRegistry) Register(pipeline protocol.Pipeline) {
	name := pipeline.Name()
	if _, exists := r.pipelines[name]; exists {
		r.logger.Warn("Overwriting already registered pipeline", "pipeline", name)
	}

	r.pipelines[name] = pipeline
	r.logger.Debug("Registered pipeline", "pipeline", name)
}

// ListPipelines returns all registered pipeline names, sorted.
func (r *PipelineRegistry) ListPipelines() []string {
	names := make([]string, 0, len(r.pipelines))
	for name := range r.pipelines {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// HasPipeline reports whether a pipeline is registered under name.
func (r *PipelineRegistry) HasPipeline(name string) bool {
	_, ok := r.pipelines[name]

	return ok
}

// GetPipeline returns the registered pipeline instance.
func (r *PipelineRegistry) GetPipeline(name string) (protocol.Pipeline, error) {
	pipeline, ok := r.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPipelineNotFound, name)
	}

	return pipeline, nil
}

// GetPipelineInfo returns the metadata view of a registered pipeline.
func (r *PipelineRegistry) GetPipelineInfo(name string) (*models.PipelineInfo, error) {
	pipeline, err := r.GetPipeline(name)
	if err != nil {
		return nil, err
	}

	return &models.PipelineInfo{
		Name:        pipeline.Name(),
		DisplayName: pipeline.DisplayName(),
		Stages:      pipeline.Stages(),
		Phases:      pipeline.Phases(),
	}, nil
}
