// Package execution holds the mutable state threaded through one pipeline run.
package execution

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/log"
	"github.com/kotoba-dev/kotoba/pkg/providers"
)

// Context carries shared data, accumulated errors, and the completed-stage
// log for a single pipeline run. A Context belongs to exactly one run and
// must never be shared across concurrent runs.
type Context struct {
	RunID        string
	PipelineName string
	ProjectRoot  string
	Logger       *slog.Logger

	data            map[string]any
	completedStages []string
	errors          []string

	Config    *config.Config
	Providers *providers.Set
}

// NewContext builds a fresh context for one run of the named pipeline.
// The provider set should already be filtered to what the pipeline is
// authorized to see.
func NewContext(pipelineName, projectRoot string, cfg *config.Config, provs *providers.Set) *Context {
	runID := "run-" + uuid.New().String()[:8]

	return &Context{
		RunID:        runID,
		PipelineName: pipelineName,
		ProjectRoot:  projectRoot,
		Logger:       log.WithPipeline(pipelineName, runID),
		data:         make(map[string]any),
		Config:       cfg,
		Providers:    provs,
	}
}

// Get returns the stored value for key, or fallback when absent.
func (c *Context) Get(key string, fallback any) any {
	if value, ok := c.data[key]; ok {
		return value
	}

	return fallback
}

// Set stores value under key, overwriting any previous value.
func (c *Context) Set(key string, value any) {
	c.data[key] = value
}

// AddError appends a message to the run's error log. Adding an error does
// not abort execution by itself.
func (c *Context) AddError(message string) {
	c.errors = append(c.errors, message)
}

// AddErrorf appends a formatted message to the run's error log.
func (c *Context) AddErrorf(format string, args ...any) {
	c.AddError(fmt.Sprintf(format, args...))
}

// HasErrors reports whether any error has been logged during this run.
func (c *Context) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns a copy of the error log in append order.
func (c *Context) Errors() []string {
	return slices.Clone(c.errors)
}

// Data returns a shallow copy of the shared key/value store, for read-only
// consumers such as condition evaluation.
func (c *Context) Data() map[string]any {
	out := make(map[string]any, len(c.data))
	for key, value := range c.data {
		out[key] = value
	}

	return out
}

// MarkStageComplete appends name to the completed-stage log. Marking the
// same stage twice is tolerated and keeps a single entry.
func (c *Context) MarkStageComplete(name string) {
	if c.IsStageComplete(name) {
		return
	}

	c.completedStages = append(c.completedStages, name)
}

// IsStageComplete reports whether name is in the completed-stage log.
func (c *Context) IsStageComplete(name string) bool {
	return slices.Contains(c.completedStages, name)
}

// CompletedStages returns a copy of the completed-stage log in completion order.
func (c *Context) CompletedStages() []string {
	return slices.Clone(c.completedStages)
}
