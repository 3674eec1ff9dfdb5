// Package testutil provides builders for stages, pipelines, and provider
// configurations used across the test suites.
package testutil

import (
	"context"

	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/models"
	"github.com/kotoba-dev/kotoba/pkg/protocol"
)

// StubStage is a configurable stage for engine tests. The zero Result
// means success; CallCount tracks core-logic invocations so tests can
// assert that validation or conditions blocked execution.
type StubStage struct {
	StageName    string
	StageDisplay string
	Deps         []string
	Problems     []string
	Cond         string
	Result       *models.StageResult
	Err          error
	Panic        any
	OnRun        func(ec *execution.Context)

	CallCount int
}

func (s *StubStage) Name() string { return s.StageName }

func (s *StubStage) DisplayName() string {
	if s.StageDisplay != "" {
		return s.StageDisplay
	}

	return s.StageName
}

func (s *StubStage) Dependencies() []string { return s.Deps }

func (s *StubStage) Condition() string { return s.Cond }

func (s *StubStage) ValidateContext(_ *execution.Context) []string {
	return s.Problems
}

func (s *StubStage) Run(_ context.Context, ec *execution.Context) (*models.StageResult, error) {
	s.CallCount++

	if s.Panic != nil {
		panic(s.Panic)
	}

	if s.OnRun != nil {
		s.OnRun(ec)
	}

	if s.Err != nil {
		return nil, s.Err
	}

	if s.Result != nil {
		return s.Result, nil
	}

	return models.NewSuccessResult(s.StageName + " completed"), nil
}

// StageFactory wraps a stub so the same instance is returned on every
// resolution, keeping CallCount observable from the test.
func StageFactory(stage *StubStage) protocol.StageFactory {
	return func() protocol.Stage { return stage }
}

// ProviderSettings builds minimal settings for one provider instance.
func ProviderSettings(providerType string, pipelines ...string) config.ProviderSettings {
	if len(pipelines) == 0 {
		pipelines = []string{"*"}
	}

	return config.ProviderSettings{
		Type:      providerType,
		Pipelines: pipelines,
		Options:   map[string]any{},
	}
}
