// Package vocabulary ships the built-in vocabulary pipeline: load a word
// list, enrich it with media, and push the resulting flashcards.
package vocabulary

import (
	"github.com/kotoba-dev/kotoba/pkg/execution"
	"github.com/kotoba-dev/kotoba/pkg/pipeline"
	"github.com/kotoba-dev/kotoba/pkg/protocol"
)

const (
	PipelineName = "vocabulary"

	PhaseFull   = "full"
	PhaseEnrich = "enrich"
)

// Context keys shared between the stages of this pipeline.
var (
	KeyWordsResource = execution.Key[string]{Name: "words_resource"}
	KeyWords         = execution.Key[[]string]{Name: "words"}
	KeyDeck          = execution.Key[string]{Name: "deck"}
	KeyCards         = execution.Key[[]map[string]any]{Name: "cards"}
)

// Pipeline is the vocabulary pipeline. It embeds the engine base and adds
// the CLI argument bridging.
type Pipeline struct {
	*pipeline.Base
}

// New builds the vocabulary pipeline with its stages and phases.
func New() *Pipeline {
	base := pipeline.NewBase(PipelineName, "Vocabulary Flashcards")

	base.RegisterStage(func() protocol.Stage { return &LoadWordsStage{} })
	base.RegisterStage(func() protocol.Stage { return &BuildCardsStage{} })
	base.RegisterStage(func() protocol.Stage { return &SyncCardsStage{} })

	// DefinePhase only fails on unknown stage names, which would be a
	// programming error in this package.
	if err := base.DefinePhase(PhaseFull, StageLoadWords, StageBuildCards, StageSyncCards); err != nil {
		panic(err)
	}

	if err := base.DefinePhase(PhaseEnrich, StageBuildCards, StageSyncCards); err != nil {
		panic(err)
	}

	return &Pipeline{Base: base}
}

// ValidateCLIArgs requires the data resource holding the word list.
func (p *Pipeline) ValidateCLIArgs(args map[string]string) []string {
	var problems []string

	if args["words"] == "" {
		problems = append(problems, "missing required argument: words (data resource holding the word list)")
	}

	return problems
}

// PopulateContextFromCLI seeds the context from the parsed arguments.
func (p *Pipeline) PopulateContextFromCLI(ec *execution.Context, args map[string]string) {
	KeyWordsResource.Set(ec, args["words"])

	deck := args["deck"]
	if deck == "" {
		deck = "Vocabulary"
	}

	KeyDeck.Set(ec, deck)
}
