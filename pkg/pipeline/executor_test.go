package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/models"
	"github.com/kotoba-dev/kotoba/pkg/testutil"
)

func newTestContext(t *testing.T) *execution.Context {
	t.Helper()

	return execution.NewContext("demo", t.TempDir(), config.New(nil), nil)
}

// demoPipeline builds the load -> transform -> save example with a "full"
// phase, with the transform stage swappable.
func demoPipeline(t *testing.T, transform *testutil.StubStage) (*Base, *testutil.StubStage, *testutil.StubStage) {
	t.Helper()

	load := &testutil.StubStage{StageName: "load"}
	save := &testutil.StubStage{StageName: "save", Deps: []string{"transform"}}

	if transform == nil {
		transform = &testutil.StubStage{StageName: "transform"}
	}

	transform.Deps = []string{"load"}

	base := NewBase("demo", "Demo Pipeline")
	base.RegisterStage(testutil.StageFactory(load))
	base.RegisterStage(testutil.StageFactory(transform))
	base.RegisterStage(testutil.StageFactory(save))
	require.NoError(t, base.DefinePhase("full", "load", "transform", "save"))

	return base, load, save
}

func TestExecuteStage_UnknownStage(t *testing.T) {
	base, _, _ := demoPipeline(t, nil)

	_, err := base.ExecuteStage(context.Background(), "publish", newTestContext(t))
	require.ErrorIs(t, err, ErrStageNotFound)
}

func TestExecuteStage_SuccessMarksStageComplete(t *testing.T) {
	base, _, _ := demoPipeline(t, nil)
	ec := newTestContext(t)

	result, err := base.ExecuteStage(context.Background(), "load", ec)
	require.NoError(t, err)

	assert.Equal(t, models.StageStatusSuccess, result.Status)
	assert.True(t, ec.IsStageComplete("load"))
	assert.False(t, ec.HasErrors())
}

func TestExecuteStage_ValidationBlocksCoreLogic(t *testing.T) {
	blocked := &testutil.StubStage{
		StageName: "load",
		Problems:  []string{"words_resource is not set"},
	}

	base := NewBase("demo", "Demo Pipeline")
	base.RegisterStage(testutil.StageFactory(blocked))

	ec := newTestContext(t)

	result, err := base.ExecuteStage(context.Background(), "load", ec)
	require.NoError(t, err)

	assert.Equal(t, models.StageStatusFailure, result.Status)
	assert.Equal(t, []string{"words_resource is not set"}, result.Errors)
	assert.Zero(t, blocked.CallCount, "core logic must not run when validation fails")
	assert.False(t, ec.IsStageComplete("load"))
}

func TestExecuteStage_UnmetDependenciesFail(t *testing.T) {
	base, _, save := demoPipeline(t, nil)
	ec := newTestContext(t)

	result, err := base.ExecuteStage(context.Background(), "save", ec)
	require.NoError(t, err)

	assert.Equal(t, models.StageStatusFailure, result.Status)
	assert.Contains(t, result.Message, "unmet dependencies")
	assert.Contains(t, result.Message, "transform")
	assert.Zero(t, save.CallCount)
}

func TestExecuteStage_SatisfiedDependenciesRun(t *testing.T) {
	base, _, save := demoPipeline(t, nil)
	ec := newTestContext(t)

	ec.MarkStageComplete("transform")

	result, err := base.ExecuteStage(context.Background(), "save", ec)
	require.NoError(t, err)

	assert.Equal(t, models.StageStatusSuccess, result.Status)
	assert.Equal(t, 1, save.CallCount)
}

func TestExecuteStage_PanicBecomesFailureResult(t *testing.T) {
	faulty := &testutil.StubStage{StageName: "load", Panic: "words file corrupted"}

	base := NewBase("demo", "Demo Pipeline")
	base.RegisterStage(testutil.StageFactory(faulty))

	ec := newTestContext(t)

	result, err := base.ExecuteStage(context.Background(), "load", ec)
	require.NoError(t, err)

	assert.Equal(t, models.StageStatusFailure, result.Status)
	assert.Contains(t, result.Message, "words file corrupted")
	assert.True(t, ec.HasErrors())
}

func TestExecuteStage_RunErrorBecomesFailureResult(t *testing.T) {
	failing := &testutil.StubStage{StageName: "load", Err: errors.New("disk full")}

	base := NewBase("demo", "Demo Pipeline")
	base.RegisterStage(testutil.StageFactory(failing))

	result, err := base.ExecuteStage(context.Background(), "load", newTestContext(t))
	require.NoError(t, err)

	assert.Equal(t, models.StageStatusFailure, result.Status)
	assert.Contains(t, result.Message, "disk full")
}

func TestExecuteStage_ConditionSkips(t *testing.T) {
	conditional := &testutil.StubStage{
		StageName: "sync",
		Cond:      `data.card_count > 0`,
	}

	base := NewBase("demo", "Demo Pipeline")
	base.RegisterStage(testutil.StageFactory(conditional))

	ec := newTestContext(t)
	ec.Set("card_count", 0)

	result, err := base.ExecuteStage(context.Background(), "sync", ec)
	require.NoError(t, err)

	assert.Equal(t, models.StageStatusSkipped, result.Status)
	assert.Zero(t, conditional.CallCount)
	assert.False(t, ec.IsStageComplete("sync"))
	assert.False(t, ec.HasErrors())
}

func TestExecuteStage_ConditionPassesAndRuns(t *testing.T) {
	conditional := &testutil.StubStage{
		StageName: "sync",
		Cond:      `data.card_count > 0`,
	}

	base := NewBase("demo", "Demo Pipeline")
	base.RegisterStage(testutil.StageFactory(conditional))

	ec := newTestContext(t)
	ec.Set("card_count", 5)

	result, err := base.ExecuteStage(context.Background(), "sync", ec)
	require.NoError(t, err)

	assert.Equal(t, models.StageStatusSuccess, result.Status)
	assert.Equal(t, 1, conditional.CallCount)
}

func TestExecutePhase_UnknownPhase(t *testing.T) {
	base, _, _ := demoPipeline(t, nil)

	_, err := base.ExecutePhase(context.Background(), "nightly", newTestContext(t))
	require.ErrorIs(t, err, ErrPhaseNotFound)
}

func TestExecutePhase_FullRunInOrder(t *testing.T) {
	base, load, save := demoPipeline(t, nil)
	ec := newTestContext(t)

	results, err := base.ExecutePhase(context.Background(), "full", ec)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for _, result := range results {
		assert.Equal(t, models.StageStatusSuccess, result.Status)
	}

	assert.Equal(t, []string{"load", "transform", "save"}, ec.CompletedStages())
	assert.Equal(t, 1, load.CallCount)
	assert.Equal(t, 1, save.CallCount)
}

func TestExecutePhase_FailFastStopsAtFailure(t *testing.T) {
	transform := &testutil.StubStage{
		StageName: "transform",
		Result:    models.NewFailureResult("transform exploded"),
	}

	base, _, save := demoPipeline(t, transform)
	ec := newTestContext(t)

	results, err := base.ExecutePhase(context.Background(), "full", ec)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, models.StageStatusSuccess, results[0].Status)
	assert.Equal(t, models.StageStatusFailure, results[1].Status)

	assert.Zero(t, save.CallCount, "save must never run after a failure")
	assert.Equal(t, []string{"transform exploded"}, ec.Errors())
	assert.Equal(t, []string{"load"}, ec.CompletedStages())
}

func TestExecutePhase_PartialDoesNotHalt(t *testing.T) {
	transform := &testutil.StubStage{
		StageName: "transform",
		Result:    models.NewPartialResult("2 of 3 transformed", "item 3 malformed"),
	}

	base, _, save := demoPipeline(t, transform)
	ec := newTestContext(t)

	// save depends on transform, which never completes on a partial
	// result; satisfy the dependency up front so the phase can prove it
	// keeps going.
	ec.MarkStageComplete("transform")

	results, err := base.ExecutePhase(context.Background(), "full", ec)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, models.StageStatusPartial, results[1].Status)
	assert.Equal(t, 1, save.CallCount)
}

func TestDefinePhase_RejectsUnknownStage(t *testing.T) {
	base := NewBase("demo", "Demo Pipeline")
	base.RegisterStage(testutil.StageFactory(&testutil.StubStage{StageName: "load"}))

	err := base.DefinePhase("full", "load", "publish")
	require.ErrorIs(t, err, ErrUnknownPhaseStage)
}

func TestBase_StagesAndPhases(t *testing.T) {
	base, _, _ := demoPipeline(t, nil)

	assert.Equal(t, []string{"load", "transform", "save"}, base.Stages())
	assert.Equal(t, map[string][]string{"full": {"load", "transform", "save"}}, base.Phases())
	assert.Equal(t, []string{"full"}, base.PhaseNames())
}
