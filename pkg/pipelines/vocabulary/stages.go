package vocabulary

import (
	"context"
	"fmt"

	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/models"
	"github.com/kotoba-dev/kotoba/pkg/providers"
)

const (
	StageLoadWords  = "load_words"
	StageBuildCards = "build_cards"
	StageSyncCards  = "sync_cards"
)

// DataProviderName is the data provider instance this pipeline reads from.
const DataProviderName = "vocab_store"

// LoadWordsStage reads the word list out of the configured data provider.
type LoadWordsStage struct{}

func (s *LoadWordsStage) Name() string { return StageLoadWords }
func (s *LoadWordsStage) DisplayName() string { return "Load Words" }
func (s *LoadWordsStage) Dependencies() []string { return nil }

func (s *LoadWordsStage) ValidateContext(ec *execution.Context) []string {
	var problems []string

	if _, ok := KeyWordsResource.Get(ec); !ok {
		problems = append(problems, "words_resource is not set")
	}

	return problems
}

func (s *LoadWordsStage) Run(ctx context.Context, ec *execution.Context) (*models.StageResult, error) {
	resource, _ := KeyWordsResource.Get(ec)

	provider, err := ec.Providers.Data(DataProviderName)
	if err != nil {
		return nil, err
	}

	document, err := provider.LoadData(ctx, resource)
	if err != nil {
		return nil, err
	}

	raw, _ := document["words"].([]any)
	words := make([]string, 0, len(raw))

	for _, item := range raw {
		if word, ok := item.(string); ok {
			words = append(words, word)
		}
	}

	if len(words) == 0 {
		return models.NewFailureResult(fmt.Sprintf("resource %q holds no words", resource)), nil
	}

	KeyWords.Set(ec, words)

	return models.NewSuccessResult(fmt.Sprintf("loaded %d words", len(words))), nil
}

// BuildCardsStage turns the word list into flashcard field maps.
type BuildCardsStage struct{}

func (s *BuildCardsStage) Name() string { return StageBuildCards }
func (s *BuildCardsStage) DisplayName() string { return "Build Cards" }
func (s *BuildCardsStage) Dependencies() []string { return []string{StageLoadWords} }

func (s *BuildCardsStage) ValidateContext(ec *execution.Context) []string {
	var problems []string

	if _, ok := KeyWords.Get(ec); !ok {
		problems = append(problems, "words are not loaded")
	}

	return problems
}

func (s *BuildCardsStage) Run(_ context.Context, ec *execution.Context) (*models.StageResult, error) {
	words, _ := KeyWords.Get(ec)

	cards := make([]map[string]any, 0, len(words))
	for _, word := range words {
		cards = append(cards, map[string]any{
			"Front": word,
			"Back":  "",
		})
	}

	KeyCards.Set(ec, cards)

	return models.NewSuccessResult(fmt.Sprintf("built %d cards", len(cards))), nil
}

// SyncCardsStage pushes the built cards through the sync provider. It only
// runs when cards were produced.
type SyncCardsStage struct{}

func (s *SyncCardsStage) Name() string { return StageSyncCards }
func (s *SyncCardsStage) DisplayName() string { return "Sync Cards" }
func (s *SyncCardsStage) Dependencies() []string { return []string{StageBuildCards} }

func (s *SyncCardsStage) Condition() string { return `len(data.cards ?? []) > 0` }

func (s *SyncCardsStage) ValidateContext(ec *execution.Context) []string {
	var problems []string

	if _, ok := KeyDeck.Get(ec); !ok {
		problems = append(problems, "deck is not set")
	}

	return problems
}

func (s *SyncCardsStage) Run(ctx context.Context, ec *execution.Context) (*models.StageResult, error) {
	deck, _ := KeyDeck.Get(ec)
	cards, _ := KeyCards.Get(ec)

	names := ec.Providers.Names(providers.CategorySync)
	if len(names) == 0 {
		return models.NewFailureResult("no sync provider authorized for this pipeline"), nil
	}

	provider, err := ec.Providers.Sync(names[0])
	if err != nil {
		return nil, err
	}

	result, err := provider.PushCards(ctx, providers.SyncRequest{Deck: deck, Cards: cards})
	if err != nil {
		return nil, err
	}

	if len(result.Failed) > 0 {
		return models.NewPartialResult(
			fmt.Sprintf("synced %d cards, %d failed", result.Created, len(result.Failed)),
			result.Failed...), nil
	}

	return models.NewSuccessResult(fmt.Sprintf("synced %d cards to %q", result.Created, deck)), nil
}
