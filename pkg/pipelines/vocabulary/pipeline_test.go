package vocabulary

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-dev/kotoba/pkg/config"
	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/models"
	"github.com/kotoba-dev/kotoba/pkg/providers"
	"github.com/kotoba-dev/kotoba/pkg/providers/data"
	syncprovider "github.com/kotoba-dev/kotoba/pkg/providers/sync"
)

// newVocabularyRun wires a real file data provider (seeded with words) and
// an AnkiConnect sync provider pointed at a stub server.
func newVocabularyRun(t *testing.T, words []any) *execution.Context {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result": 1, "error": null}`))
	}))
	t.Cleanup(server.Close)

	registry := providers.NewRegistry(slog.Default())
	require.NoError(t, registry.RegisterFactory(providers.CategoryData, data.TypeFile, data.NewFileProvider))
	require.NoError(t, registry.RegisterFactory(providers.CategorySync, syncprovider.TypeAnkiConnect, syncprovider.NewAnkiConnectProvider))

	root := t.TempDir()
	require.NoError(t, registry.Build(config.ProvidersConfig{
		"data": {
			DataProviderName: {
				Type:      data.TypeFile,
				Pipelines: []string{PipelineName},
				Files:     []string{"words.json"},
				Options:   map[string]any{"root": root},
			},
		},
		"sync": {
			"anki": {
				Type:      syncprovider.TypeAnkiConnect,
				Pipelines: []string{"*"},
				Options:   map[string]any{"endpoint": server.URL},
			},
		},
	}))

	seed, err := registry.GetDataProvider(DataProviderName)
	require.NoError(t, err)
	require.NoError(t, seed.SaveData(context.Background(), "words.json", map[string]any{"words": words}))

	ec := execution.NewContext(PipelineName, root, config.New(nil), registry.ForPipeline(PipelineName))
	KeyWordsResource.Set(ec, "words.json")
	KeyDeck.Set(ec, "Vocabulary")

	return ec
}

func TestPipeline_FullPhase(t *testing.T) {
	pipeline := New()
	ec := newVocabularyRun(t, []any{"neko", "inu", "tori"})

	results, err := pipeline.ExecutePhase(context.Background(), PhaseFull, ec)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for _, result := range results {
		assert.Equal(t, models.StageStatusSuccess, result.Status, result.Message)
	}

	assert.Equal(t, []string{StageLoadWords, StageBuildCards, StageSyncCards}, ec.CompletedStages())
	assert.False(t, ec.HasErrors())

	cards, ok := KeyCards.Get(ec)
	require.True(t, ok)
	assert.Len(t, cards, 3)
}

func TestPipeline_EmptyWordListFailsFast(t *testing.T) {
	pipeline := New()
	ec := newVocabularyRun(t, []any{})

	results, err := pipeline.ExecutePhase(context.Background(), PhaseFull, ec)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, models.StageStatusFailure, results[0].Status)
	assert.True(t, ec.HasErrors())
	assert.Empty(t, ec.CompletedStages())
}

func TestPipeline_ValidateCLIArgs(t *testing.T) {
	pipeline := New()

	problems := pipeline.ValidateCLIArgs(map[string]string{})
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "words")

	assert.Empty(t, pipeline.ValidateCLIArgs(map[string]string{"words": "words.json"}))
}

func TestPipeline_PopulateContextFromCLI(t *testing.T) {
	pipeline := New()
	ec := execution.NewContext(PipelineName, t.TempDir(), config.New(nil), nil)

	pipeline.PopulateContextFromCLI(ec, map[string]string{"words": "words.json"})

	resource, ok := KeyWordsResource.Get(ec)
	require.True(t, ok)
	assert.Equal(t, "words.json", resource)

	deck, ok := KeyDeck.Get(ec)
	require.True(t, ok)
	assert.Equal(t, "Vocabulary", deck, "deck falls back to the default")
}

func TestPipeline_Shape(t *testing.T) {
	pipeline := New()

	assert.Equal(t, PipelineName, pipeline.Name())
	assert.Equal(t, []string{StageLoadWords, StageBuildCards, StageSyncCards}, pipeline.Stages())

	phases := pipeline.Phases()
	assert.Equal(t, []string{StageLoadWords, StageBuildCards, StageSyncCards}, phases[PhaseFull])
	assert.Equal(t, []string{StageBuildCards, StageSyncCards}, phases[PhaseEnrich])
}
