package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ExpandsEnvironmentPlaceholders(t *testing.T) {
	t.Setenv("KOTOBA_TEST_ROOT", "/srv/kotoba")

	cfg, err := Parse([]byte(`
paths:
  root: ${KOTOBA_TEST_ROOT}
  cache: ${KOTOBA_TEST_MISSING:/tmp/cache}
  empty: ${KOTOBA_TEST_MISSING}
`))
	require.NoError(t, err)

	assert.Equal(t, "/srv/kotoba", cfg.GetString("paths.root", ""))
	assert.Equal(t, "/tmp/cache", cfg.GetString("paths.cache", ""))
	assert.Equal(t, "", cfg.GetString("paths.empty", "unset"))
}

func TestParse_ExpandsInsideListsAndNestedMaps(t *testing.T) {
	t.Setenv("KOTOBA_TEST_DECK", "JLPT N5")

	cfg, err := Parse([]byte(`
providers:
  sync:
    anki:
      type: ankiconnect
      pipelines: ["*"]
      options:
        decks:
          - ${KOTOBA_TEST_DECK}
          - ${KOTOBA_TEST_OTHER:Core 2k}
`))
	require.NoError(t, err)

	decks := cfg.GetStringSlice("providers.sync.anki.options.decks")
	assert.Equal(t, []string{"JLPT N5", "Core 2k"}, decks)
}

func TestGet_DottedPathLookup(t *testing.T) {
	cfg, err := Parse([]byte(`
pipelines:
  vocabulary:
    deck: Vocabulary
    enabled: true
`))
	require.NoError(t, err)

	value, ok := cfg.Get("pipelines.vocabulary.deck")
	require.True(t, ok)
	assert.Equal(t, "Vocabulary", value)

	assert.True(t, cfg.GetBool("pipelines.vocabulary.enabled", false))

	_, ok = cfg.Get("pipelines.conjugation.deck")
	assert.False(t, ok)
}

func TestGet_MissingPathReturnsFallback(t *testing.T) {
	cfg, err := Parse([]byte(`a: 1`))
	require.NoError(t, err)

	assert.Equal(t, "fallback", cfg.GetString("b.c", "fallback"))
	assert.True(t, cfg.GetBool("b.c", true))
	assert.Nil(t, cfg.GetStringSlice("b.c"))
}

func TestSection_ReturnsCategoryMap(t *testing.T) {
	cfg, err := Parse([]byte(`
providers:
  data: {}
logging:
  level: debug
`))
	require.NoError(t, err)

	section := cfg.Section("logging")
	assert.Equal(t, "debug", section["level"])

	assert.Empty(t, cfg.Section("nonexistent"))
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("providers: [unclosed"))
	require.Error(t, err)
}

func TestNew_WrapsProgrammaticSettings(t *testing.T) {
	t.Setenv("KOTOBA_TEST_KEY", "secret")

	cfg := New(map[string]any{
		"api": map[string]any{"key": "${KOTOBA_TEST_KEY}"},
	})

	assert.Equal(t, "secret", cfg.GetString("api.key", ""))
}
