package cmd

import (
	"log/slog"

	"github.com/kotoba-dev/kotoba/pkg/pipelines/vocabulary"
	"github.com/kotoba-dev/kotoba/pkg/registry"
)

// NewPipelineRegistry builds the pipeline registry with every built-in
// pipeline registered. The registry is read-only after this returns.
func NewPipelineRegistry(logger *slog.Logger) *registry.PipelineRegistry {
	pipelines := registry.NewPipelineRegistry(logger)
	pipelines.Register(vocabulary.New())

	return pipelines
}
