package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-dev/kotoba/pkg/config"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()

	return NewContext("vocabulary", t.TempDir(), config.New(nil), nil)
}

func TestNewContext_Identity(t *testing.T) {
	ec := newTestContext(t)

	assert.Equal(t, "vocabulary", ec.PipelineName)
	assert.NotEmpty(t, ec.ProjectRoot)
	require.NotEmpty(t, ec.RunID)
	assert.Regexp(t, `^run-[0-9a-f]{8}$`, ec.RunID)
}

func TestContext_GetAndSet(t *testing.T) {
	ec := newTestContext(t)

	assert.Equal(t, "fallback", ec.Get("missing", "fallback"))

	ec.Set("word_count", 42)
	assert.Equal(t, 42, ec.Get("word_count", 0))

	ec.Set("word_count", 7)
	assert.Equal(t, 7, ec.Get("word_count", 0))
}

func TestContext_ErrorLogIsAppendOnly(t *testing.T) {
	ec := newTestContext(t)

	assert.False(t, ec.HasErrors())

	ec.AddError("first problem")
	ec.AddErrorf("second problem: %d items", 3)

	assert.True(t, ec.HasErrors())
	assert.Equal(t, []string{"first problem", "second problem: 3 items"}, ec.Errors())
}

func TestContext_MarkStageCompleteIsIdempotent(t *testing.T) {
	ec := newTestContext(t)

	ec.MarkStageComplete("load")
	ec.MarkStageComplete("transform")
	ec.MarkStageComplete("load")

	assert.Equal(t, []string{"load", "transform"}, ec.CompletedStages())
	assert.True(t, ec.IsStageComplete("load"))
	assert.False(t, ec.IsStageComplete("save"))
}

func TestContext_DataReturnsCopy(t *testing.T) {
	ec := newTestContext(t)
	ec.Set("words", []string{"neko"})

	snapshot := ec.Data()
	snapshot["words"] = []string{"inu"}

	assert.Equal(t, []string{"neko"}, ec.Get("words", nil))
}

func TestKey_TypedAccess(t *testing.T) {
	ec := newTestContext(t)
	words := Key[[]string]{Name: "words"}

	_, ok := words.Get(ec)
	assert.False(t, ok)
	assert.Equal(t, []string{"default"}, words.GetOr(ec, []string{"default"}))

	words.Set(ec, []string{"neko", "inu"})

	got, ok := words.Get(ec)
	require.True(t, ok)
	assert.Equal(t, []string{"neko", "inu"}, got)
}

func TestKey_MistypedValueIsNotReturned(t *testing.T) {
	ec := newTestContext(t)
	ec.Set("count", "not a number")

	count := Key[int]{Name: "count"}

	_, ok := count.Get(ec)
	assert.False(t, ok)
	assert.Equal(t, 10, count.GetOr(ec, 10))
}
